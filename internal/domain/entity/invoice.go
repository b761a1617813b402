package entity

// InvoiceLineItem is one line on the current invoice. UnitPrice is a snapshot
// of the medicine's effective price at add-time.
type InvoiceLineItem struct {
	Name      string  `json:"name"`
	Strength  string  `json:"strength"`
	Rack      string  `json:"rack"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// LineTotal returns unit price times quantity.
func (i *InvoiceLineItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Invoice is an ordered collection of line items, at most one per medicine
// name. Amounts are kept at full float precision; rounding to two decimals
// happens only when a value is formatted for display or printing.
type Invoice struct {
	Items []InvoiceLineItem `json:"items"`
}

// NewInvoice creates an empty invoice.
func NewInvoice() *Invoice {
	return &Invoice{}
}

// AddOrMergeItem appends the item, or merges it into the existing line with
// the same name by adding quantities. Name comparison is case-insensitive.
func (inv *Invoice) AddOrMergeItem(item InvoiceLineItem) {
	key := NormalizeName(item.Name)
	for idx := range inv.Items {
		if NormalizeName(inv.Items[idx].Name) == key {
			inv.Items[idx].Quantity += item.Quantity
			return
		}
	}
	inv.Items = append(inv.Items, item)
}

// Subtotal returns the sum of all line totals.
func (inv *Invoice) Subtotal() float64 {
	var sum float64
	for idx := range inv.Items {
		sum += inv.Items[idx].LineTotal()
	}
	return sum
}

// DiscountAmount returns subtotal scaled by percent/100. Callers are
// responsible for keeping percent within [0, 100].
func (inv *Invoice) DiscountAmount(percent float64) float64 {
	return inv.Subtotal() * (percent / 100.0)
}

// NetTotal returns the subtotal minus the discount amount.
func (inv *Invoice) NetTotal(percent float64) float64 {
	return inv.Subtotal() - inv.DiscountAmount(percent)
}

// TotalQuantity returns the sum of all item quantities.
func (inv *Invoice) TotalQuantity() int {
	var total int
	for idx := range inv.Items {
		total += inv.Items[idx].Quantity
	}
	return total
}

// IsEmpty reports whether the invoice has no line items.
func (inv *Invoice) IsEmpty() bool {
	return len(inv.Items) == 0
}

// Clear removes all line items.
func (inv *Invoice) Clear() {
	inv.Items = nil
}
