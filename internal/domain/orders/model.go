// Package orders turns cart reservations into immutable orders, drawing
// stock from specific batches through the allocator.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"dispensary/internal/core/entity"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Order statuses. The subsystem only places orders; fulfillment moves the
// status downstream.
const (
	StatusPlaced    = "placed"
	StatusCancelled = "cancelled"
	StatusFulfilled = "fulfilled"
)

// Order is the header row. Money totals are fixed at placement.
type Order struct {
	entity.BaseRecord

	UserID      id.ID       `db:"user_id" json:"userId"`
	Status      string      `db:"status" json:"status"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
}

func NewOrder(userID id.ID) *Order {
	return &Order{
		BaseRecord:  entity.NewBaseRecord(),
		UserID:      userID,
		Status:      StatusPlaced,
		TotalAmount: types.ZeroMoney(),
	}
}

// Item is one batch-level slice of an order. A single cart line expands
// into several items when its quantity spans more than one batch. Items
// are historical records: the price is the price at time of sale, and the
// batch id keeps the lot traceable for recalls.
type Item struct {
	ID         id.ID          `db:"id" json:"id"`
	OrderID    id.ID          `db:"order_id" json:"orderId"`
	MedicineID id.ID          `db:"medicine_id" json:"medicineId"`
	BatchID    id.ID          `db:"batch_id" json:"batchId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

// LineTotal is quantity times unit price.
func (i *Item) LineTotal() types.Money {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity.Int64()))
}
