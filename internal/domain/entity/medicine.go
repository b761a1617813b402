package entity

import (
	"encoding/json"
	"strings"
)

// MedicineRecord represents a single medicine row from the inventory source.
// Name is the unique key, compared case-insensitively after trimming.
type MedicineRecord struct {
	Name          string   `json:"name"`
	Strength      string   `json:"strength"`
	Rack          string   `json:"rack"`
	Stock         int      `json:"stock"`
	ListPrice     float64  `json:"list_price"`
	OverridePrice *float64 `json:"override_price,omitempty"`
}

// EffectivePrice returns the override price when one is set, else the list price.
func (m *MedicineRecord) EffectivePrice() float64 {
	if m.OverridePrice != nil {
		return *m.OverridePrice
	}
	return m.ListPrice
}

// NormalizeName produces the lookup key for a medicine name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// medicineRecordJSON mirrors MedicineRecord with the effective price included.
type medicineRecordJSON struct {
	Name           string   `json:"name"`
	Strength       string   `json:"strength"`
	Rack           string   `json:"rack"`
	Stock          int      `json:"stock"`
	ListPrice      float64  `json:"list_price"`
	OverridePrice  *float64 `json:"override_price,omitempty"`
	EffectivePrice float64  `json:"effective_price"`
}

// MarshalJSON exposes the derived effective price alongside the raw fields.
func (m MedicineRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(medicineRecordJSON{
		Name:           m.Name,
		Strength:       m.Strength,
		Rack:           m.Rack,
		Stock:          m.Stock,
		ListPrice:      m.ListPrice,
		OverridePrice:  m.OverridePrice,
		EffectivePrice: m.EffectivePrice(),
	})
}
