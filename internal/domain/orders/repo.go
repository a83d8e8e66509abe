package orders

import (
	"context"

	"dispensary/internal/core/id"
)

// Repository persists orders and their items. CreateItems is expected to
// use a bulk path (COPY) since one order can expand into many batch-level
// items; both calls must run inside the placement transaction.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	CreateItems(ctx context.Context, items []Item) error

	GetOrder(ctx context.Context, orderID id.ID) (*Order, error)
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	ListByUser(ctx context.Context, userID id.ID) ([]Order, error)
}
