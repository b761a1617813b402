package entity

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string  `json:"name"`
	Strength  string  `json:"strength,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Receipt is a value object representing a printable receipt. It is composed
// from the invoice at print time and never stored.
type Receipt struct {
	Header          ReceiptHeader `json:"header"`
	InvoiceNo       string        `json:"invoice_no"`
	Date            string        `json:"date"`
	Cashier         string        `json:"cashier,omitempty"`
	Customer        string        `json:"customer,omitempty"`
	Items           []ReceiptItem `json:"items"`
	SubTotal        float64       `json:"sub_total"`
	DiscountPercent float64       `json:"discount_percent"`
	Discount        float64       `json:"discount"`
	NetTotal        float64       `json:"net_total"`
	TotalQuantity   int           `json:"total_quantity"`
}
