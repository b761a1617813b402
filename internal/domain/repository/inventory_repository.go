package repository

import (
	"context"

	"github.com/pharmaware/counterpos-api/internal/domain/entity"
)

// InventoryRepository defines the interface for the medicine inventory source.
type InventoryRepository interface {
	// Load reads all medicine records from the source, replacing the
	// in-memory set atomically. On failure the previously loaded set
	// remains usable.
	Load(ctx context.Context) error
	// FindByName looks up a record by name, case-insensitive after trimming.
	// Returns a copy so callers cannot mutate store state.
	FindByName(name string) (entity.MedicineRecord, bool)
	// ListNames returns display names in source order.
	ListNames() []string
	// ApplyStockDecrement reduces a record's stock in memory only.
	// qty must be positive and must not exceed the current stock.
	ApplyStockDecrement(name string, qty int) error
	// Commit writes all in-memory stock values back to the source. On
	// failure the in-memory state is left unchanged so the caller may retry.
	Commit(ctx context.Context) error
	// SelfCheck reports whether all required fields were present at load time.
	SelfCheck() bool
}
