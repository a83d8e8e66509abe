package dto

import (
	"time"

	"dispensary/internal/domain/cart"
)

// AddToCartRequest adds units on top of the user's existing line.
type AddToCartRequest struct {
	MedicineID string `json:"medicineId" binding:"required,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
}

// SetCartQuantityRequest replaces a line's quantity. Zero removes it.
type SetCartQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"gte=0"`
}

// CartLineResponse represents a cart line in API responses.
type CartLineResponse struct {
	MedicineID string    `json:"medicineId"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FromCartLine converts entity to response DTO.
func FromCartLine(l *cart.Line) CartLineResponse {
	return CartLineResponse{
		MedicineID: l.MedicineID.String(),
		Quantity:   l.Quantity.Int64(),
		UpdatedAt:  l.UpdatedAt,
	}
}

// CartResponse is the user's whole cart.
type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
}

// FromCartLines converts a line slice.
func FromCartLines(lines []cart.Line) CartResponse {
	out := CartResponse{Lines: make([]CartLineResponse, 0, len(lines))}
	for i := range lines {
		out.Lines = append(out.Lines, FromCartLine(&lines[i]))
	}
	return out
}
