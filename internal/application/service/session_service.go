package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/pharmaware/counterpos-api/internal/domain/entity"
	"github.com/pharmaware/counterpos-api/internal/domain/repository"
	"github.com/pharmaware/counterpos-api/pkg/apperror"
)

// ReceiptRenderer renders and prints a receipt for the given invoice. The
// session controller only cares about success or failure; how the receipt is
// rendered or routed to a device is the implementation's business.
type ReceiptRenderer interface {
	PrintInvoice(inv *entity.Invoice, discountPercent float64, customer string) (*entity.Receipt, error)
}

// Selection describes the currently selected medicine, with available stock
// already reduced by quantities reserved in the invoice.
type Selection struct {
	Name           string  `json:"name"`
	Strength       string  `json:"strength"`
	Rack           string  `json:"rack"`
	UnitPrice      float64 `json:"unit_price"`
	AvailableStock int     `json:"available_stock"`
}

// CartSummary is the invoice with its derived totals.
type CartSummary struct {
	Items           []entity.InvoiceLineItem `json:"items"`
	TotalQuantity   int                      `json:"total_quantity"`
	SubTotal        float64                  `json:"sub_total"`
	DiscountPercent float64                  `json:"discount_percent"`
	Discount        float64                  `json:"discount"`
	NetTotal        float64                  `json:"net_total"`
}

// CheckoutInput carries the checkout parameters.
type CheckoutInput struct {
	DiscountPercent float64
	CustomerName    string
	CustomerPhone   string
}

// SessionService orchestrates one counter session: medicine selection,
// cart reservations, and checkout. Reservations guarantee that quantities
// placed in the invoice never exceed the stock on hand. The mutex serializes
// requests into the single-logical-session model — one user action runs to
// completion before the next is accepted.
type SessionService struct {
	mu        sync.Mutex
	inventory repository.InventoryRepository
	printer   ReceiptRenderer

	invoice  *entity.Invoice
	reserved map[string]int // normalized name -> qty reserved in the invoice
	selected string         // display name of the current selection, "" when idle

	// pendingCommit is set when stock decrements are applied in memory but
	// not yet persisted (the receipt has already printed). Until the commit
	// is retried successfully, the session accepts no new mutations.
	pendingCommit bool
}

// NewSessionService creates a session service with an empty invoice.
func NewSessionService(inventory repository.InventoryRepository, printer ReceiptRenderer) *SessionService {
	return &SessionService{
		inventory: inventory,
		printer:   printer,
		invoice:   entity.NewInvoice(),
		reserved:  make(map[string]int),
	}
}

// SelectMedicine looks up a medicine and makes it the current selection.
// A lookup miss clears any previous selection.
func (s *SessionService) SelectMedicine(name string) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.inventory.FindByName(name)
	if !ok {
		s.selected = ""
		return nil, fmt.Errorf("%w: %s", apperror.ErrMedicineNotFound, name)
	}

	s.selected = rec.Name
	return s.selectionFor(&rec), nil
}

// CurrentSelection returns the selection, refreshed against current stock.
func (s *SessionService) CurrentSelection() (*Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == "" {
		return nil, false
	}
	rec, ok := s.inventory.FindByName(s.selected)
	if !ok {
		return nil, false
	}
	return s.selectionFor(&rec), true
}

// AddToCart reserves qty units of the selected medicine into the invoice.
// The selection stays active with its available stock reduced.
func (s *SessionService) AddToCart(qty int) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingCommit {
		return nil, apperror.NewBadRequestError("Uncommitted stock changes pending; retry commit first")
	}
	if s.selected == "" {
		return nil, apperror.ErrNoSelection
	}
	if qty <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be positive")
	}

	name := s.selected
	rec, ok := s.inventory.FindByName(name)
	if !ok {
		s.selected = ""
		return nil, fmt.Errorf("%w: %s", apperror.ErrMedicineNotFound, name)
	}

	key := entity.NormalizeName(rec.Name)
	available := rec.Stock - s.reserved[key]
	if available < 0 {
		available = 0
	}
	if qty > available {
		return nil, &apperror.InsufficientStockError{Name: rec.Name, Available: available, Requested: qty}
	}

	s.invoice.AddOrMergeItem(entity.InvoiceLineItem{
		Name:      rec.Name,
		Strength:  rec.Strength,
		Rack:      rec.Rack,
		UnitPrice: rec.EffectivePrice(),
		Quantity:  qty,
	})
	s.reserved[key] += qty

	return s.selectionFor(&rec), nil
}

// Cart returns the invoice with totals computed for the given discount.
func (s *SessionService) Cart(discountPercent float64) (*CartSummary, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return nil, apperror.NewBadRequestError("Discount percent must be between 0 and 100")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartSummary(discountPercent), nil
}

// Checkout prints the receipt, applies stock decrements, persists them, and
// resets the session. The order matters: a failed print aborts before any
// stock mutation, a failed persist leaves decrements in memory so the commit
// can be retried without re-decrementing.
func (s *SessionService) Checkout(ctx context.Context, input CheckoutInput) (*entity.Receipt, error) {
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, apperror.NewBadRequestError("Discount percent must be between 0 and 100")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingCommit {
		return nil, apperror.NewBadRequestError("Uncommitted stock changes pending; retry commit first")
	}
	if s.invoice.IsEmpty() {
		return nil, apperror.ErrEmptyInvoice
	}

	customer := input.CustomerName
	if customer == "" {
		customer = "Walk-in Customer"
	}
	if input.CustomerPhone != "" {
		customer += " (" + input.CustomerPhone + ")"
	}

	receipt, err := s.printer.PrintInvoice(s.invoice, input.DiscountPercent, customer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrPrintFailed, err)
	}

	// Reservation tracking makes these decrements always satisfiable; a
	// failure here means the store and the ledger disagree. Nothing has been
	// persisted yet, so reloading from the source rolls back the decrements
	// that did land. If even the rollback fails, freeze the session so a
	// repeated checkout cannot decrement the same lines twice.
	for i, item := range s.invoice.Items {
		if derr := s.inventory.ApplyStockDecrement(item.Name, item.Quantity); derr != nil {
			if i > 0 {
				if lerr := s.inventory.Load(ctx); lerr != nil {
					log.Printf("Warning: rollback reload failed: %v", lerr)
					s.pendingCommit = true
				}
			}
			return nil, fmt.Errorf("%w: %s: %v", apperror.ErrStockUpdateFailed, item.Name, derr)
		}
	}

	if err := s.inventory.Commit(ctx); err != nil {
		s.pendingCommit = true
		return receipt, err
	}

	s.finishSession(ctx)
	return receipt, nil
}

// RetryCommit re-attempts the persist step of a checkout whose stock
// decrements are applied but unsaved. The decrements are not re-applied.
func (s *SessionService) RetryCommit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pendingCommit {
		return apperror.NewBadRequestError("No pending commit to retry")
	}
	if err := s.inventory.Commit(ctx); err != nil {
		return err
	}

	s.finishSession(ctx)
	return nil
}

// finishSession resets the invoice, ledger, and selection after a fully
// committed checkout, then reloads the inventory for a clean baseline.
// Callers must hold the mutex.
func (s *SessionService) finishSession(ctx context.Context) {
	s.invoice.Clear()
	s.reserved = make(map[string]int)
	s.selected = ""
	s.pendingCommit = false

	if err := s.inventory.Load(ctx); err != nil {
		log.Printf("Warning: inventory reload after checkout failed: %v", err)
	}
}

// Clear empties the invoice and releases all reservations. A pending commit
// stays pending: the stock decrements already happened.
func (s *SessionService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoice.Clear()
	s.reserved = make(map[string]int)
	s.selected = ""
}

func (s *SessionService) selectionFor(rec *entity.MedicineRecord) *Selection {
	available := rec.Stock - s.reserved[entity.NormalizeName(rec.Name)]
	if available < 0 {
		available = 0
	}
	return &Selection{
		Name:           rec.Name,
		Strength:       rec.Strength,
		Rack:           rec.Rack,
		UnitPrice:      rec.EffectivePrice(),
		AvailableStock: available,
	}
}

func (s *SessionService) cartSummary(discountPercent float64) *CartSummary {
	items := make([]entity.InvoiceLineItem, len(s.invoice.Items))
	copy(items, s.invoice.Items)

	return &CartSummary{
		Items:           items,
		TotalQuantity:   s.invoice.TotalQuantity(),
		SubTotal:        s.invoice.Subtotal(),
		DiscountPercent: discountPercent,
		Discount:        s.invoice.DiscountAmount(discountPercent),
		NetTotal:        s.invoice.NetTotal(discountPercent),
	}
}
