package cart

import (
	"context"

	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Repository persists cart lines. The postgres implementation also serves
// as the inventory.ReservationSource for availability math.
type Repository interface {
	// GetLine returns the user's line for the medicine, or nil when the
	// user has none.
	GetLine(ctx context.Context, userID, medicineID id.ID) (*Line, error)

	// UpsertLine creates the line or replaces its quantity.
	UpsertLine(ctx context.Context, line *Line) error

	DeleteLine(ctx context.Context, userID, medicineID id.ID) error

	// ListByUser returns the user's cart, newest line first.
	ListByUser(ctx context.Context, userID id.ID) ([]Line, error)

	// DeleteByUser clears the user's whole cart. Called on order
	// placement inside the order transaction.
	DeleteByUser(ctx context.Context, userID id.ID) error

	// ReservedQuantity sums line quantities for the medicine across all
	// users, minus the excluded user's line when excludeUserID is set.
	ReservedQuantity(ctx context.Context, medicineID id.ID, excludeUserID *id.ID) (types.Quantity, error)
}
