// Package cart implements per-user shopping carts. A cart line is a soft
// reservation: it lowers computed availability for everyone else but never
// touches the batch ledger.
package cart

import (
	"context"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/entity"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Line is one user's reservation of one medicine. A user holds at most one
// line per medicine; repeated adds accumulate into it.
type Line struct {
	entity.BaseRecord

	UserID     id.ID          `db:"user_id" json:"userId"`
	MedicineID id.ID          `db:"medicine_id" json:"medicineId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
}

func NewLine(userID, medicineID id.ID, quantity types.Quantity) *Line {
	return &Line{
		BaseRecord: entity.NewBaseRecord(),
		UserID:     userID,
		MedicineID: medicineID,
		Quantity:   quantity,
	}
}

// Validate implements entity.Validatable.
func (l *Line) Validate(ctx context.Context) error {
	if id.IsNil(l.UserID) {
		return apperror.NewValidation("user is required").
			WithDetail("field", "userId")
	}
	if id.IsNil(l.MedicineID) {
		return apperror.NewValidation("medicine is required").
			WithDetail("field", "medicineId")
	}
	if !l.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	return nil
}
