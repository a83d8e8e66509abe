// Package medicine is the catalog of sellable medicines.
package medicine

import (
	"context"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/entity"
	"dispensary/internal/core/types"
)

// Schedules recognized by the dispensing policy. Schedule is free text at
// the storage level; these are the values the seed data and UI use.
const (
	ScheduleOTC = "OTC"
	ScheduleH   = "H"
	ScheduleH1  = "H1"
	ScheduleX   = "X"
)

// Medicine is a catalog entry. Physical stock lives in inventory batches;
// the catalog only describes what can be sold and under which rules.
type Medicine struct {
	entity.Catalog

	GenericName  *string `db:"generic_name" json:"genericName,omitempty"`
	Manufacturer *string `db:"manufacturer" json:"manufacturer,omitempty"`

	// Schedule is the regulatory schedule; RequiresPrescription covers
	// medicines that are prescription-only outside the schedule system.
	Schedule             string `db:"schedule" json:"schedule"`
	RequiresPrescription bool   `db:"requires_prescription" json:"requiresPrescription"`

	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	Description *string     `db:"description" json:"description,omitempty"`
}

func New(code, name string, unitPrice types.Money) *Medicine {
	return &Medicine{
		Catalog:   entity.NewCatalog(code, name),
		Schedule:  ScheduleOTC,
		UnitPrice: unitPrice,
	}
}

// Validate implements entity.Validatable.
func (m *Medicine) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}
	if m.Schedule == "" {
		return apperror.NewValidation("schedule is required").
			WithDetail("field", "schedule")
	}
	if m.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}
