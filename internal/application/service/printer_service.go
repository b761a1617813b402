package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaware/counterpos-api/internal/domain/entity"
	"github.com/pharmaware/counterpos-api/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	header      entity.ReceiptHeader
	cashier     string
	paperWidth  int
	printerType string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, header entity.ReceiptHeader, cashier string, paperWidth int, printerType string) *PrinterService {
	if paperWidth <= 0 {
		paperWidth = 48
	}
	return &PrinterService{
		printer:     p,
		header:      header,
		cashier:     cashier,
		paperWidth:  paperWidth,
		printerType: printerType,
	}
}

var _ ReceiptRenderer = (*PrinterService)(nil)

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// PrintInvoice composes a receipt from the invoice and sends it to the
// printer. The receipt is returned even on failure so callers can show what
// would have printed.
func (s *PrinterService) PrintInvoice(inv *entity.Invoice, discountPercent float64, customer string) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:          s.header,
		InvoiceNo:       fmt.Sprintf("INV-%s", uuid.New().String()[:8]),
		Date:            time.Now().Format("2006-01-02 15:04"),
		Cashier:         s.cashier,
		Customer:        customer,
		SubTotal:        inv.Subtotal(),
		DiscountPercent: discountPercent,
		Discount:        inv.DiscountAmount(discountPercent),
		NetTotal:        inv.NetTotal(discountPercent),
		TotalQuantity:   inv.TotalQuantity(),
	}

	for _, item := range inv.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.Name,
			Strength:  item.Strength,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.LineTotal(),
		})
	}

	data := FormatReceipt(receipt, s.paperWidth)
	if err := s.printer.Print(data); err != nil {
		return receipt, err
	}
	return receipt, nil
}

// TestPrint sends a test page to the printer. The receipt data is returned so
// the handler can show it when the printer is disabled.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:    s.header,
		InvoiceNo: "TEST-001",
		Date:      time.Now().Format("2006-01-02 15:04"),
		Cashier:   s.cashier,
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		SubTotal:      20.00,
		NetTotal:      20.00,
		TotalQuantity: 3,
	}

	data := FormatReceipt(receipt, s.paperWidth)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, paperWidth int) []byte {
	doc := printer.NewDocument(paperWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		name := item.Name
		if item.Strength != "" {
			name += " " + item.Strength
		}
		doc.ItemLine(item.Quantity, name, fmt.Sprintf("%.2f", item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %.2f each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	doc.KeyValue("Subtotal:", fmt.Sprintf("%.2f", r.SubTotal))
	if r.DiscountPercent > 0 {
		doc.KeyValue(fmt.Sprintf("Discount (%.1f%%):", r.DiscountPercent),
			fmt.Sprintf("-%.2f", r.Discount))
	}
	doc.SetBold(true).
		KeyValue("NET TOTAL:", fmt.Sprintf("%.2f", r.NetTotal)).
		SetBold(false)

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
