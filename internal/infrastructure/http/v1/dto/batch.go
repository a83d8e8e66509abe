package dto

import (
	"time"

	"dispensary/internal/core/types"
	"dispensary/internal/domain/inventory"
)

// Dates cross the API as plain calendar days.
const dateLayout = "2006-01-02"

// AddBatchRequest records a received batch.
type AddBatchRequest struct {
	MedicineID  string `json:"medicineId" binding:"required,uuid"`
	BatchNumber string `json:"batchNumber" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
	ExpiryDate  string `json:"expiryDate" binding:"required"`
}

// ParseExpiry parses the expiry date field.
func (r *AddBatchRequest) ParseExpiry() (time.Time, error) {
	return time.Parse(dateLayout, r.ExpiryDate)
}

// UpdateBatchRequest partially corrects a batch.
type UpdateBatchRequest struct {
	BatchNumber *string `json:"batchNumber"`
	Quantity    *int64  `json:"quantity"`
	ExpiryDate  *string `json:"expiryDate"`
}

// ToBatchUpdate converts the request into the domain update struct.
func (r *UpdateBatchRequest) ToBatchUpdate() (inventory.BatchUpdate, error) {
	upd := inventory.BatchUpdate{BatchNumber: r.BatchNumber}

	if r.Quantity != nil {
		qty := types.Quantity(*r.Quantity)
		upd.Quantity = &qty
	}
	if r.ExpiryDate != nil {
		parsed, err := time.Parse(dateLayout, *r.ExpiryDate)
		if err != nil {
			return inventory.BatchUpdate{}, err
		}
		upd.ExpiryDate = &parsed
	}
	return upd, nil
}

// DisposeBatchRequest withdraws a batch from sale.
type DisposeBatchRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BatchResponse represents a batch in API responses.
type BatchResponse struct {
	ID             string  `json:"id"`
	MedicineID     string  `json:"medicineId"`
	BatchNumber    string  `json:"batchNumber"`
	Quantity       int64   `json:"quantity"`
	ExpiryDate     string  `json:"expiryDate"`
	IsDisposed     bool    `json:"isDisposed"`
	DisposalReason *string `json:"disposalReason,omitempty"`
	DisposedAt     *string `json:"disposedAt,omitempty"`
	Version        int     `json:"version"`
}

// FromBatch converts entity to response DTO.
func FromBatch(b *inventory.Batch) BatchResponse {
	resp := BatchResponse{
		ID:             b.ID.String(),
		MedicineID:     b.MedicineID.String(),
		BatchNumber:    b.BatchNumber,
		Quantity:       b.Quantity.Int64(),
		ExpiryDate:     b.ExpiryDate.Format(dateLayout),
		IsDisposed:     b.IsDisposed,
		DisposalReason: b.DisposalReason,
		Version:        b.Version,
	}
	if b.DisposedAt != nil {
		formatted := b.DisposedAt.Format(time.RFC3339)
		resp.DisposedAt = &formatted
	}
	return resp
}

// FromBatches converts a batch slice.
func FromBatches(batches []inventory.Batch) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, FromBatch(&batches[i]))
	}
	return out
}

// AvailabilityResponse reports sellable stock for a medicine.
type AvailabilityResponse struct {
	MedicineID     string `json:"medicineId"`
	AvailableStock int64  `json:"availableStock"`
}
