package entity

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAddOrMergeItemMergesByName(t *testing.T) {
	inv := NewInvoice()
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Paracetamol", UnitPrice: 5.00, Quantity: 10})
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Paracetamol", UnitPrice: 5.00, Quantity: 10})

	if len(inv.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(inv.Items))
	}
	if inv.Items[0].Quantity != 20 {
		t.Fatalf("expected merged quantity 20, got %d", inv.Items[0].Quantity)
	}
	if !almostEqual(inv.Items[0].LineTotal(), 100.00) {
		t.Fatalf("expected line total 100.00, got %f", inv.Items[0].LineTotal())
	}
}

func TestAddOrMergeItemIsCaseInsensitive(t *testing.T) {
	inv := NewInvoice()
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Paracetamol", UnitPrice: 5.00, Quantity: 1})
	inv.AddOrMergeItem(InvoiceLineItem{Name: "PARACETAMOL", UnitPrice: 5.00, Quantity: 2})

	if len(inv.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(inv.Items))
	}
	if inv.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", inv.Items[0].Quantity)
	}
}

func TestAddOrMergeItemPreservesInsertionOrder(t *testing.T) {
	inv := NewInvoice()
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Aspirin", UnitPrice: 2.00, Quantity: 1})
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Paracetamol", UnitPrice: 5.00, Quantity: 1})
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Aspirin", UnitPrice: 2.00, Quantity: 4})

	if len(inv.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(inv.Items))
	}
	if inv.Items[0].Name != "Aspirin" || inv.Items[1].Name != "Paracetamol" {
		t.Fatalf("insertion order not preserved: %v", inv.Items)
	}
	if inv.Items[0].Quantity != 5 {
		t.Fatalf("expected Aspirin quantity 5, got %d", inv.Items[0].Quantity)
	}
}

func TestInvoiceTotals(t *testing.T) {
	inv := NewInvoice()
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Paracetamol", UnitPrice: 5.00, Quantity: 20})
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Aspirin", UnitPrice: 10.00, Quantity: 10})

	if !almostEqual(inv.Subtotal(), 200.00) {
		t.Fatalf("expected subtotal 200.00, got %f", inv.Subtotal())
	}
	if !almostEqual(inv.DiscountAmount(10), 20.00) {
		t.Fatalf("expected discount 20.00, got %f", inv.DiscountAmount(10))
	}
	if !almostEqual(inv.NetTotal(10), 180.00) {
		t.Fatalf("expected net total 180.00, got %f", inv.NetTotal(10))
	}
	if inv.TotalQuantity() != 30 {
		t.Fatalf("expected total quantity 30, got %d", inv.TotalQuantity())
	}
}

func TestDiscountBoundaries(t *testing.T) {
	inv := NewInvoice()
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Ibuprofen", UnitPrice: 7.50, Quantity: 4})

	if !almostEqual(inv.NetTotal(0), inv.Subtotal()) {
		t.Fatalf("net total at 0%% should equal subtotal")
	}
	if !almostEqual(inv.NetTotal(100), 0) {
		t.Fatalf("net total at 100%% should be zero, got %f", inv.NetTotal(100))
	}

	for _, pct := range []float64{0, 7.5, 12.5, 33.3, 50, 99, 100} {
		sum := inv.DiscountAmount(pct) + inv.NetTotal(pct)
		if !almostEqual(sum, inv.Subtotal()) {
			t.Fatalf("discount + net != subtotal at %v%%: %f vs %f", pct, sum, inv.Subtotal())
		}
	}
}

func TestClearEmptiesInvoice(t *testing.T) {
	inv := NewInvoice()
	inv.AddOrMergeItem(InvoiceLineItem{Name: "Paracetamol", UnitPrice: 5.00, Quantity: 2})
	inv.Clear()

	if !inv.IsEmpty() {
		t.Fatalf("expected invoice to be empty after clear")
	}
	if !almostEqual(inv.Subtotal(), 0) {
		t.Fatalf("expected zero subtotal after clear, got %f", inv.Subtotal())
	}
}

func TestEffectivePrice(t *testing.T) {
	rec := MedicineRecord{Name: "Paracetamol", ListPrice: 5.00}
	if !almostEqual(rec.EffectivePrice(), 5.00) {
		t.Fatalf("expected list price 5.00, got %f", rec.EffectivePrice())
	}

	override := 4.25
	rec.OverridePrice = &override
	if !almostEqual(rec.EffectivePrice(), 4.25) {
		t.Fatalf("expected override price 4.25, got %f", rec.EffectivePrice())
	}
}

func TestNormalizeName(t *testing.T) {
	if NormalizeName("  Paracetamol ") != "paracetamol" {
		t.Fatalf("expected trimmed lowercase name, got %q", NormalizeName("  Paracetamol "))
	}
}
