package excel

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/pharmaware/counterpos-api/internal/domain/entity"
	domainRepo "github.com/pharmaware/counterpos-api/internal/domain/repository"
	"github.com/pharmaware/counterpos-api/pkg/apperror"
)

// Header labels the inventory workbook must carry on its first row.
const (
	ColumnName          = "Medicine_Name"
	ColumnStrength      = "MG"
	ColumnRack          = "Rack_Number"
	ColumnStock         = "Stock"
	ColumnPrice         = "Price"
	ColumnOverridePrice = "Actual_Price"
)

var requiredColumns = []string{
	ColumnName, ColumnStrength, ColumnRack, ColumnStock, ColumnPrice, ColumnOverridePrice,
}

// InventoryStore loads and mutates medicine inventory backed by an Excel
// workbook. Reads and in-memory decrements are cheap; Load and Commit touch
// the file and hold no handle in between.
type InventoryStore struct {
	path  string
	sheet string

	mu      sync.RWMutex
	columns map[string]int               // header label -> zero-based column index
	names   []string                     // display names in sheet order
	records map[string]*entity.MedicineRecord // keyed by normalized name
	rows    map[string]int               // normalized name -> one-based row index
	checked bool
}

// NewInventoryStore creates a store for the given workbook path and sheet name.
// Call Load before using it.
func NewInventoryStore(path, sheet string) *InventoryStore {
	return &InventoryStore{path: path, sheet: sheet}
}

var _ domainRepo.InventoryRepository = (*InventoryStore)(nil)

// Load reads the workbook and replaces the in-memory record set. The swap
// only happens once the whole sheet parsed, so a failed reload leaves the
// previous records intact.
func (s *InventoryStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", apperror.ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("%w: sheet %q: %v", apperror.ErrSchema, s.sheet, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: sheet %q has no header row", apperror.ErrSchema, s.sheet)
	}

	columns, err := detectColumns(rows[0])
	if err != nil {
		return err
	}

	names := make([]string, 0, len(rows)-1)
	records := make(map[string]*entity.MedicineRecord, len(rows)-1)
	rowRefs := make(map[string]int, len(rows)-1)

	for i, row := range rows[1:] {
		rowIdx := i + 2 // one-based, after the header
		name := strings.TrimSpace(cellAt(row, columns[ColumnName]))
		if name == "" {
			continue
		}

		rec := &entity.MedicineRecord{
			Name:          name,
			Strength:      strings.TrimSpace(cellAt(row, columns[ColumnStrength])),
			Rack:          strings.TrimSpace(cellAt(row, columns[ColumnRack])),
			Stock:         parseIntOrZero(cellAt(row, columns[ColumnStock])),
			ListPrice:     parseFloatOrZero(cellAt(row, columns[ColumnPrice])),
			OverridePrice: parseOptionalFloat(cellAt(row, columns[ColumnOverridePrice])),
		}

		key := entity.NormalizeName(name)
		if _, exists := records[key]; exists {
			// Duplicate name; first row wins, matching lookup semantics.
			continue
		}
		names = append(names, name)
		records[key] = rec
		rowRefs[key] = rowIdx
	}

	s.mu.Lock()
	s.columns = columns
	s.names = names
	s.records = records
	s.rows = rowRefs
	s.checked = true
	s.mu.Unlock()
	return nil
}

// FindByName returns a copy of the record for the given name.
func (s *InventoryStore) FindByName(name string) (entity.MedicineRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[entity.NormalizeName(name)]
	if !ok {
		return entity.MedicineRecord{}, false
	}
	return *rec, true
}

// ListNames returns display names in sheet order.
func (s *InventoryStore) ListNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// ApplyStockDecrement reduces a record's stock in memory. It does not persist.
func (s *InventoryStore) ApplyStockDecrement(name string, qty int) error {
	if qty <= 0 {
		return apperror.NewBadRequestError("Quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[entity.NormalizeName(name)]
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrMedicineNotFound, name)
	}
	if qty > rec.Stock {
		return &apperror.InsufficientStockError{Name: rec.Name, Available: rec.Stock, Requested: qty}
	}
	rec.Stock -= qty
	return nil
}

// Commit writes all in-memory stock values back to their original rows and
// saves the workbook. In-memory state is untouched on failure, so callers can
// retry the commit without re-applying decrements.
func (s *InventoryStore) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", apperror.ErrPersistence, s.path, err)
	}
	defer f.Close()

	stockCol := s.columns[ColumnStock]
	for key, rec := range s.records {
		cell, err := excelize.CoordinatesToCellName(stockCol+1, s.rows[key])
		if err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
		}
		if err := f.SetCellValue(s.sheet, cell, rec.Stock); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
	}
	return nil
}

// SelfCheck reports whether the last load found all required columns.
func (s *InventoryStore) SelfCheck() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checked
}

func detectColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for idx, label := range header {
		label = strings.TrimSpace(label)
		if label != "" {
			columns[label] = idx
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s",
			apperror.ErrSchema, strings.Join(missing, ", "))
	}
	return columns, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// One bad cell degrades to zero instead of failing the whole load.
func parseIntOrZero(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(value, 64); err == nil {
		return int(fl)
	}
	return 0
}

func parseFloatOrZero(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	fl, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return fl
}

func parseOptionalFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	fl, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &fl
}
