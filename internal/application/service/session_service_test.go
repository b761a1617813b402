package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pharmaware/counterpos-api/internal/domain/entity"
	"github.com/pharmaware/counterpos-api/pkg/apperror"
)

// fakeInventory is an in-memory InventoryRepository for session tests. It
// mirrors the real store's persistence split: decrements mutate records,
// Commit snapshots them as the saved state, Load restores from the snapshot.
type fakeInventory struct {
	records      map[string]*entity.MedicineRecord
	saved        map[string]entity.MedicineRecord
	order        []string
	commitErr    error
	loadErr      error
	decrementErr map[string]error
	loadCalls    int
	commitCalls  int
}

func newFakeInventory(records ...entity.MedicineRecord) *fakeInventory {
	f := &fakeInventory{
		records: make(map[string]*entity.MedicineRecord),
		saved:   make(map[string]entity.MedicineRecord),
	}
	for i := range records {
		rec := records[i]
		key := entity.NormalizeName(rec.Name)
		f.records[key] = &rec
		f.saved[key] = rec
		f.order = append(f.order, rec.Name)
	}
	return f
}

func (f *fakeInventory) Load(ctx context.Context) error {
	f.loadCalls++
	if f.loadErr != nil {
		return f.loadErr
	}
	for key, rec := range f.saved {
		restored := rec
		f.records[key] = &restored
	}
	return nil
}

func (f *fakeInventory) FindByName(name string) (entity.MedicineRecord, bool) {
	rec, ok := f.records[entity.NormalizeName(name)]
	if !ok {
		return entity.MedicineRecord{}, false
	}
	return *rec, true
}

func (f *fakeInventory) ListNames() []string {
	return append([]string(nil), f.order...)
}

func (f *fakeInventory) ApplyStockDecrement(name string, qty int) error {
	key := entity.NormalizeName(name)
	if err := f.decrementErr[key]; err != nil {
		return err
	}
	rec, ok := f.records[key]
	if !ok {
		return apperror.ErrMedicineNotFound
	}
	if qty <= 0 {
		return apperror.NewBadRequestError("Quantity must be positive")
	}
	if qty > rec.Stock {
		return &apperror.InsufficientStockError{Name: rec.Name, Available: rec.Stock, Requested: qty}
	}
	rec.Stock -= qty
	return nil
}

func (f *fakeInventory) Commit(ctx context.Context) error {
	f.commitCalls++
	if f.commitErr != nil {
		return f.commitErr
	}
	for key, rec := range f.records {
		f.saved[key] = *rec
	}
	return nil
}

func (f *fakeInventory) SelfCheck() bool { return true }

// fakeRenderer implements ReceiptRenderer with a failure toggle.
type fakeRenderer struct {
	fail bool
	jobs int
}

func (r *fakeRenderer) PrintInvoice(inv *entity.Invoice, discountPercent float64, customer string) (*entity.Receipt, error) {
	if r.fail {
		return nil, errors.New("device unavailable")
	}
	r.jobs++
	return &entity.Receipt{
		SubTotal: inv.Subtotal(),
		NetTotal: inv.NetTotal(discountPercent),
		Customer: customer,
	}, nil
}

func newTestSession(records ...entity.MedicineRecord) (*SessionService, *fakeInventory, *fakeRenderer) {
	inv := newFakeInventory(records...)
	renderer := &fakeRenderer{}
	return NewSessionService(inv, renderer), inv, renderer
}

func paracetamol() entity.MedicineRecord {
	return entity.MedicineRecord{Name: "Paracetamol", Strength: "500mg", Rack: "A1", Stock: 100, ListPrice: 5.00}
}

func TestSelectMedicineNotFound(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	_, err := svc.SelectMedicine("Nonexistol")
	if !errors.Is(err, apperror.ErrMedicineNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if _, ok := svc.CurrentSelection(); ok {
		t.Fatalf("expected selection to be cleared on lookup miss")
	}
}

func TestSelectMedicineIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	sel, err := svc.SelectMedicine("  paracetamol ")
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if sel.Name != "Paracetamol" {
		t.Fatalf("expected display name Paracetamol, got %s", sel.Name)
	}
	if sel.AvailableStock != 100 {
		t.Fatalf("expected available stock 100, got %d", sel.AvailableStock)
	}
}

func TestReservationNeverExceedsStock(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	sel, err := svc.AddToCart(10)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if sel.AvailableStock != 90 {
		t.Fatalf("expected available stock 90 after reserving 10, got %d", sel.AvailableStock)
	}

	_, err = svc.AddToCart(95)
	var insufficient *apperror.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if insufficient.Available != 90 {
		t.Fatalf("expected reported available 90, got %d", insufficient.Available)
	}
}

func TestAddToCartRequiresSelection(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	if _, err := svc.AddToCart(1); !errors.Is(err, apperror.ErrNoSelection) {
		t.Fatalf("expected no-selection error, got %v", err)
	}
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())
	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	for _, qty := range []int{0, -1, -100} {
		if _, err := svc.AddToCart(qty); err == nil {
			t.Fatalf("expected error for quantity %d", qty)
		}
	}

	cart, _ := svc.Cart(0)
	if len(cart.Items) != 0 {
		t.Fatalf("expected no items after rejected adds, got %d", len(cart.Items))
	}
}

func TestZeroStockMedicineCannotBeAdded(t *testing.T) {
	svc, _, _ := newTestSession(entity.MedicineRecord{Name: "Expirol", Stock: 0, ListPrice: 3.00})

	sel, err := svc.SelectMedicine("Expirol")
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if sel.AvailableStock != 0 {
		t.Fatalf("expected available stock 0, got %d", sel.AvailableStock)
	}

	_, err = svc.AddToCart(1)
	var insufficient *apperror.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if insufficient.Available != 0 {
		t.Fatalf("expected reported available 0, got %d", insufficient.Available)
	}
}

func TestAddToCartSnapshotsEffectivePrice(t *testing.T) {
	override := 4.00
	svc, _, _ := newTestSession(entity.MedicineRecord{
		Name: "Paracetamol", Stock: 50, ListPrice: 5.00, OverridePrice: &override,
	})

	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.AddToCart(2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, _ := svc.Cart(0)
	if cart.Items[0].UnitPrice != 4.00 {
		t.Fatalf("expected snapshotted override price 4.00, got %f", cart.Items[0].UnitPrice)
	}
	if cart.SubTotal != 8.00 {
		t.Fatalf("expected subtotal 8.00, got %f", cart.SubTotal)
	}
}

func TestCartRejectsOutOfRangeDiscount(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	for _, pct := range []float64{-1, 100.5, 200} {
		if _, err := svc.Cart(pct); err == nil {
			t.Fatalf("expected error for discount %v", pct)
		}
	}
}

func TestCheckoutEmptyInvoice(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	_, err := svc.Checkout(context.Background(), CheckoutInput{})
	if !errors.Is(err, apperror.ErrEmptyInvoice) {
		t.Fatalf("expected empty-invoice error, got %v", err)
	}
}

func TestCheckoutPrintFailureLeavesStateIntact(t *testing.T) {
	svc, inv, renderer := newTestSession(paracetamol())

	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.AddToCart(10); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	renderer.fail = true
	_, err := svc.Checkout(context.Background(), CheckoutInput{DiscountPercent: 10})
	if !errors.Is(err, apperror.ErrPrintFailed) {
		t.Fatalf("expected print-failed error, got %v", err)
	}

	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 100 {
		t.Fatalf("expected stock untouched after print failure, got %d", rec.Stock)
	}
	if inv.commitCalls != 0 {
		t.Fatalf("expected no commit after print failure, got %d", inv.commitCalls)
	}
	cart, _ := svc.Cart(0)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 10 {
		t.Fatalf("expected invoice intact for retry, got %+v", cart.Items)
	}

	// Printer recovers; the same checkout now goes through.
	renderer.fail = false
	receipt, err := svc.Checkout(context.Background(), CheckoutInput{DiscountPercent: 10})
	if err != nil {
		t.Fatalf("checkout after printer recovery failed: %v", err)
	}
	if receipt == nil {
		t.Fatalf("expected a receipt")
	}
	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 90 {
		t.Fatalf("expected stock 90 after checkout, got %d", rec.Stock)
	}
}

func TestCheckoutDecrementsCommitsAndResets(t *testing.T) {
	svc, inv, renderer := newTestSession(
		paracetamol(),
		entity.MedicineRecord{Name: "Aspirin", Stock: 30, ListPrice: 2.00},
	)

	mustAdd := func(name string, qty int) {
		t.Helper()
		if _, err := svc.SelectMedicine(name); err != nil {
			t.Fatalf("select %s failed: %v", name, err)
		}
		if _, err := svc.AddToCart(qty); err != nil {
			t.Fatalf("add %s failed: %v", name, err)
		}
	}
	mustAdd("Paracetamol", 10)
	mustAdd("Aspirin", 5)

	receipt, err := svc.Checkout(context.Background(), CheckoutInput{DiscountPercent: 10, CustomerName: "Asha"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if receipt.Customer != "Asha" {
		t.Fatalf("expected customer on receipt, got %q", receipt.Customer)
	}
	if renderer.jobs != 1 {
		t.Fatalf("expected 1 print job, got %d", renderer.jobs)
	}

	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 90 {
		t.Fatalf("expected Paracetamol stock 90, got %d", rec.Stock)
	}
	if rec, _ := inv.FindByName("Aspirin"); rec.Stock != 25 {
		t.Fatalf("expected Aspirin stock 25, got %d", rec.Stock)
	}
	if inv.commitCalls != 1 {
		t.Fatalf("expected 1 commit, got %d", inv.commitCalls)
	}
	if inv.loadCalls != 1 {
		t.Fatalf("expected reload after checkout, got %d loads", inv.loadCalls)
	}

	cart, _ := svc.Cart(0)
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty invoice after checkout, got %d items", len(cart.Items))
	}
	if _, ok := svc.CurrentSelection(); ok {
		t.Fatalf("expected selection cleared after checkout")
	}

	// Reservations are released: full stock is available again.
	sel, err := svc.SelectMedicine("Paracetamol")
	if err != nil {
		t.Fatalf("select after checkout failed: %v", err)
	}
	if sel.AvailableStock != 90 {
		t.Fatalf("expected available 90 after checkout, got %d", sel.AvailableStock)
	}
}

func TestCheckoutRejectsOutOfRangeDiscount(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())
	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.AddToCart(1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if _, err := svc.Checkout(context.Background(), CheckoutInput{DiscountPercent: 101}); err == nil {
		t.Fatalf("expected error for discount 101")
	}
}

func TestRetryCommitAfterPersistenceFailure(t *testing.T) {
	svc, inv, _ := newTestSession(paracetamol())

	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.AddToCart(10); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	inv.commitErr = fmt.Errorf("%w: disk full", apperror.ErrPersistence)
	receipt, err := svc.Checkout(context.Background(), CheckoutInput{})
	if !errors.Is(err, apperror.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if receipt == nil {
		t.Fatalf("expected receipt even though persist failed (it already printed)")
	}
	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 90 {
		t.Fatalf("expected in-memory decrement to remain, got stock %d", rec.Stock)
	}

	// New mutations are blocked until the commit lands.
	if _, err := svc.AddToCart(1); err == nil {
		t.Fatalf("expected add to be blocked while commit is pending")
	}
	if _, err := svc.Checkout(context.Background(), CheckoutInput{}); err == nil {
		t.Fatalf("expected checkout to be blocked while commit is pending")
	}

	// Retrying does not re-apply decrements.
	inv.commitErr = nil
	if err := svc.RetryCommit(context.Background()); err != nil {
		t.Fatalf("retry commit failed: %v", err)
	}
	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 90 {
		t.Fatalf("expected stock still 90 after retry (no double decrement), got %d", rec.Stock)
	}
	if inv.commitCalls != 2 {
		t.Fatalf("expected 2 commit attempts, got %d", inv.commitCalls)
	}

	cart, _ := svc.Cart(0)
	if len(cart.Items) != 0 {
		t.Fatalf("expected invoice cleared after successful retry, got %d items", len(cart.Items))
	}
}

func TestCheckoutStockMismatchRollsBackDecrements(t *testing.T) {
	svc, inv, _ := newTestSession(
		paracetamol(),
		entity.MedicineRecord{Name: "Aspirin", Stock: 30, ListPrice: 2.00},
	)

	mustAdd := func(name string, qty int) {
		t.Helper()
		if _, err := svc.SelectMedicine(name); err != nil {
			t.Fatalf("select %s failed: %v", name, err)
		}
		if _, err := svc.AddToCart(qty); err != nil {
			t.Fatalf("add %s failed: %v", name, err)
		}
	}
	mustAdd("Paracetamol", 10)
	mustAdd("Aspirin", 5)

	inv.decrementErr = map[string]error{"aspirin": errors.New("row vanished")}
	_, err := svc.Checkout(context.Background(), CheckoutInput{})
	if !errors.Is(err, apperror.ErrStockUpdateFailed) {
		t.Fatalf("expected stock-update error, got %v", err)
	}

	// The first line's decrement is rolled back by reloading the source.
	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 100 {
		t.Fatalf("expected stock restored to 100, got %d", rec.Stock)
	}
	if inv.commitCalls != 0 {
		t.Fatalf("expected no commit, got %d", inv.commitCalls)
	}

	// Invoice survives and the session is not frozen.
	cart, _ := svc.Cart(0)
	if len(cart.Items) != 2 {
		t.Fatalf("expected invoice intact, got %d items", len(cart.Items))
	}
	inv.decrementErr = nil
	if _, err := svc.Checkout(context.Background(), CheckoutInput{}); err != nil {
		t.Fatalf("checkout after store recovery failed: %v", err)
	}
	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 90 {
		t.Fatalf("expected single decrement after retry, got stock %d", rec.Stock)
	}
}

func TestCheckoutStockMismatchFreezesWhenRollbackFails(t *testing.T) {
	svc, inv, _ := newTestSession(
		paracetamol(),
		entity.MedicineRecord{Name: "Aspirin", Stock: 30, ListPrice: 2.00},
	)

	for _, name := range []string{"Paracetamol", "Aspirin"} {
		if _, err := svc.SelectMedicine(name); err != nil {
			t.Fatalf("select %s failed: %v", name, err)
		}
		if _, err := svc.AddToCart(5); err != nil {
			t.Fatalf("add %s failed: %v", name, err)
		}
	}

	inv.decrementErr = map[string]error{"aspirin": errors.New("row vanished")}
	inv.loadErr = errors.New("source gone")
	if _, err := svc.Checkout(context.Background(), CheckoutInput{}); !errors.Is(err, apperror.ErrStockUpdateFailed) {
		t.Fatalf("expected stock-update error, got %v", err)
	}

	// With the rollback impossible the session freezes, so a repeated
	// checkout cannot decrement the surviving lines twice.
	if _, err := svc.Checkout(context.Background(), CheckoutInput{}); err == nil {
		t.Fatalf("expected checkout to be blocked after failed rollback")
	}
	if _, err := svc.AddToCart(1); err == nil {
		t.Fatalf("expected add to be blocked after failed rollback")
	}
	if rec, _ := inv.FindByName("Paracetamol"); rec.Stock != 95 {
		t.Fatalf("expected exactly one decrement, got stock %d", rec.Stock)
	}
}

func TestRetryCommitWithoutPendingCommit(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	if err := svc.RetryCommit(context.Background()); err == nil {
		t.Fatalf("expected error when no commit is pending")
	}
}

func TestClearReleasesReservations(t *testing.T) {
	svc, _, _ := newTestSession(paracetamol())

	if _, err := svc.SelectMedicine("Paracetamol"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.AddToCart(40); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	svc.Clear()

	sel, err := svc.SelectMedicine("Paracetamol")
	if err != nil {
		t.Fatalf("select after clear failed: %v", err)
	}
	if sel.AvailableStock != 100 {
		t.Fatalf("expected full stock available after clear, got %d", sel.AvailableStock)
	}
	cart, _ := svc.Cart(0)
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty invoice after clear")
	}
}
