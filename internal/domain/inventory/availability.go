package inventory

import (
	"context"

	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Calculator answers "how many units can be promised right now" for a
// medicine: physical stock across eligible batches minus soft cart
// reservations. The figure is advisory, the allocator re-checks under
// row locks at order time.
type Calculator struct {
	stock        StockSource
	reservations ReservationSource
}

// StockSource is the slice of Repository the calculator needs.
type StockSource interface {
	TotalStock(ctx context.Context, medicineID id.ID) (types.Quantity, error)
}

func NewCalculator(stock StockSource, reservations ReservationSource) *Calculator {
	return &Calculator{stock: stock, reservations: reservations}
}

// AvailableStock computes total eligible stock minus reservations held by
// other users, floored at zero. A nil forUserID counts every reservation.
func (c *Calculator) AvailableStock(ctx context.Context, medicineID id.ID, forUserID *id.ID) (types.Quantity, error) {
	total, err := c.stock.TotalStock(ctx, medicineID)
	if err != nil {
		return 0, err
	}

	reserved, err := c.reservations.ReservedQuantity(ctx, medicineID, forUserID)
	if err != nil {
		return 0, err
	}

	// Over-reservation is possible because carts are not locked against
	// each other; clamp instead of reporting negative availability.
	return (total - reserved).FloorZero(), nil
}
