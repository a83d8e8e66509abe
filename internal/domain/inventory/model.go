// Package inventory provides the batch ledger, availability calculation and
// FIFO allocation for medicine stock.
package inventory

import (
	"context"
	"time"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/entity"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Batch is a physical lot of a medicine with its own expiry date.
// Quantity is mutated only by allocation (decrement) or restock; disposal
// withdraws the batch from sale without touching the remaining quantity, so
// the record keeps how much was thrown away.
type Batch struct {
	entity.BaseRecord

	// MedicineID is the owning medicine (many batches per medicine)
	MedicineID id.ID `db:"medicine_id" json:"medicineId"`

	// BatchNumber is the manufacturer-assigned lot identifier.
	// Free text, not unique across medicines.
	BatchNumber string `db:"batch_number" json:"batchNumber"`

	// Quantity is the count of units currently in this batch (never negative)
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ExpiryDate is the calendar date after which the batch is unsellable
	ExpiryDate time.Time `db:"expiry_date" json:"expiryDate"`

	// Disposal lifecycle. A disposed batch is permanently excluded from
	// availability and allocation; there is no undispose operation.
	IsDisposed     bool       `db:"is_disposed" json:"isDisposed"`
	DisposalReason *string    `db:"disposal_reason" json:"disposalReason,omitempty"`
	DisposedAt     *time.Time `db:"disposed_at" json:"disposedAt,omitempty"`
}

// NewBatch creates a batch for a medicine.
func NewBatch(medicineID id.ID, batchNumber string, quantity types.Quantity, expiryDate time.Time) *Batch {
	return &Batch{
		BaseRecord:  entity.NewBaseRecord(),
		MedicineID:  medicineID,
		BatchNumber: batchNumber,
		Quantity:    quantity,
		ExpiryDate:  expiryDate,
	}
}

// Validate implements entity.Validatable.
func (b *Batch) Validate(ctx context.Context) error {
	if id.IsNil(b.MedicineID) {
		return apperror.NewValidation("medicine is required").
			WithDetail("field", "medicineId")
	}

	if b.BatchNumber == "" {
		return apperror.NewValidation("batch number is required").
			WithDetail("field", "batchNumber")
	}

	if b.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	// An expiry date in the past is allowed at creation: receiving clerks
	// record historical lots; "not expired" is a catalog-entry concern.
	if b.ExpiryDate.IsZero() {
		return apperror.NewValidation("expiry date is required").
			WithDetail("field", "expiryDate")
	}

	return nil
}

// Eligible reports whether the batch may be drawn from by the allocator.
func (b *Batch) Eligible() bool {
	return !b.IsDisposed && b.Quantity.IsPositive()
}

// IsExpired reports whether the batch expiry is strictly before asOf.
func (b *Batch) IsExpired(asOf time.Time) bool {
	return b.ExpiryDate.Before(asOf.Truncate(24 * time.Hour))
}

// Dispose marks the batch as withdrawn from sale.
// Quantity is intentionally preserved as a historical record.
func (b *Batch) Dispose(reason string, at time.Time) {
	b.IsDisposed = true
	b.DisposalReason = &reason
	b.DisposedAt = &at
}

// BatchUpdate carries a partial update for a batch.
// Nil fields are left unchanged. A direct quantity change bypasses the
// allocator; callers own the business meaning (correction vs. restock).
type BatchUpdate struct {
	BatchNumber *string         `json:"batchNumber,omitempty"`
	Quantity    *types.Quantity `json:"quantity,omitempty"`
	ExpiryDate  *time.Time      `json:"expiryDate,omitempty"`
}
