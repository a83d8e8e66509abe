package dto

import (
	"time"

	"dispensary/internal/domain/orders"
)

// PlaceOrderRequest converts the caller's cart into an order.
// PrescriptionApprovals lists medicine ids the caller holds an approved
// prescription for.
type PlaceOrderRequest struct {
	PrescriptionApprovals []string `json:"prescriptionApprovals"`
}

// OrderItemResponse is one batch-level slice of an order.
type OrderItemResponse struct {
	MedicineID string `json:"medicineId"`
	BatchID    string `json:"batchId"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	LineTotal  string `json:"lineTotal"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"totalAmount"`
	CreatedAt   time.Time           `json:"createdAt"`
	Items       []OrderItemResponse `json:"items,omitempty"`
}

// FromOrder converts the header (and optionally items) to a response DTO.
func FromOrder(o *orders.Order, items []orders.Item) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID.String(),
		Status:      o.Status,
		TotalAmount: o.TotalAmount.StringFixed(2),
		CreatedAt:   o.CreatedAt,
	}
	for i := range items {
		it := &items[i]
		resp.Items = append(resp.Items, OrderItemResponse{
			MedicineID: it.MedicineID.String(),
			BatchID:    it.BatchID.String(),
			Quantity:   it.Quantity.Int64(),
			UnitPrice:  it.UnitPrice.StringFixed(2),
			LineTotal:  it.LineTotal().StringFixed(2),
		})
	}
	return resp
}

// FromOrders converts order headers.
func FromOrders(list []orders.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, FromOrder(&list[i], nil))
	}
	return out
}
