package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmaware/counterpos-api/internal/domain/entity"
	"github.com/pharmaware/counterpos-api/internal/domain/repository"
	"github.com/pharmaware/counterpos-api/pkg/apperror"
)

// InventoryService exposes inventory lookups and reloads to the HTTP layer.
type InventoryService struct {
	repo repository.InventoryRepository
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(repo repository.InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// ListNames returns display names in source order. A non-empty query filters
// to names containing it, case-insensitive, which drives search autocomplete.
func (s *InventoryService) ListNames(query string) []string {
	names := s.repo.ListNames()
	if query == "" {
		return names
	}

	query = strings.ToLower(strings.TrimSpace(query))
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), query) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// GetMedicine returns the record for the given name.
func (s *InventoryService) GetMedicine(name string) (*entity.MedicineRecord, error) {
	rec, ok := s.repo.FindByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrMedicineNotFound, name)
	}
	return &rec, nil
}

// Reload re-reads the inventory from its source.
func (s *InventoryService) Reload(ctx context.Context) error {
	return s.repo.Load(ctx)
}

// SelfCheck reports whether the loaded source had all required fields.
func (s *InventoryService) SelfCheck() bool {
	return s.repo.SelfCheck()
}
