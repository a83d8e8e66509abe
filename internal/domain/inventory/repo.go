package inventory

import (
	"context"
	"time"

	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Repository persists batches.
//
// EligibleForUpdate and DecrementQuantity are only meaningful inside a
// transaction started by tx.Manager; the postgres implementation acquires
// row locks (SELECT ... FOR UPDATE) that live until commit.
type Repository interface {
	CreateBatch(ctx context.Context, batch *Batch) error
	GetBatch(ctx context.Context, batchID id.ID) (*Batch, error)
	UpdateBatch(ctx context.Context, batch *Batch) error

	// ListByMedicine returns all batches of the medicine, including
	// disposed and empty ones, ordered by expiry date then id.
	ListByMedicine(ctx context.Context, medicineID id.ID) ([]Batch, error)

	// EligibleForUpdate returns non-disposed batches with quantity >= 1
	// for the medicine, ordered by (expiry_date, id) ascending, locking
	// each row for the remainder of the transaction.
	EligibleForUpdate(ctx context.Context, medicineID id.ID) ([]Batch, error)

	// DecrementQuantity subtracts qty from the batch, guarded so the
	// stored quantity never goes negative. Returns false when the guard
	// rejected the decrement (concurrent drain).
	DecrementQuantity(ctx context.Context, batchID id.ID, qty types.Quantity) (bool, error)

	// TotalStock sums quantity over non-disposed batches of the medicine.
	TotalStock(ctx context.Context, medicineID id.ID) (types.Quantity, error)

	// Expiring returns non-disposed batches whose expiry date falls
	// strictly before the cutoff, ordered by expiry date.
	Expiring(ctx context.Context, before time.Time) ([]Batch, error)

	// Expired returns non-disposed batches with quantity >= 1 whose
	// expiry date is strictly before asOf.
	Expired(ctx context.Context, asOf time.Time) ([]Batch, error)
}

// ReservationSource reports soft reservations held against a medicine.
// The cart repository implements it; availability subtracts its answer.
type ReservationSource interface {
	// ReservedQuantity sums cart line quantities for the medicine,
	// excluding lines owned by excludeUserID when it is non-nil.
	ReservedQuantity(ctx context.Context, medicineID id.ID, excludeUserID *id.ID) (types.Quantity, error)
}

// MedicineChecker verifies a medicine exists before ledger operations
// touch it. The medicine repository implements it.
type MedicineChecker interface {
	Exists(ctx context.Context, medicineID id.ID) (bool, error)
}
