package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/audit"
)

func newLedger(repo *memRepo, medicineIDs ...id.ID) *Service {
	known := make(map[id.ID]bool, len(medicineIDs))
	for _, mID := range medicineIDs {
		known[mID] = true
	}
	return NewService(repo, &stubMedicines{known: known}, nopTx{}, audit.Nop{})
}

func TestAddBatch_CreatesBatch(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	repo := newMemRepo()
	svc := newLedger(repo, medicineID)

	batch := NewBatch(medicineID, "LOT-2025-001", 50, date(2025, 12, 1))
	require.NoError(t, svc.AddBatch(ctx, batch))

	stored, err := repo.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "LOT-2025-001", stored.BatchNumber)
	assert.EqualValues(t, 50, stored.Quantity)
	assert.False(t, stored.IsDisposed)
}

func TestAddBatch_RejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	svc := newLedger(newMemRepo(), medicineID)

	for _, qty := range []int64{0, -5} {
		batch := NewBatch(medicineID, "LOT-X", types.Quantity(qty), date(2025, 12, 1))
		err := svc.AddBatch(ctx, batch)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestAddBatch_UnknownMedicine(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(newMemRepo()) // no known medicines

	batch := NewBatch(id.New(), "LOT-X", 10, date(2025, 12, 1))
	err := svc.AddBatch(ctx, batch)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddBatch_AllowsPastExpiry(t *testing.T) {
	// Receiving clerks record historical lots; expiry in the past is a
	// reporting concern, not a creation error.
	ctx := context.Background()
	medicineID := id.New()
	svc := newLedger(newMemRepo(), medicineID)

	batch := NewBatch(medicineID, "LOT-OLD", 3, date(2020, 1, 1))
	assert.NoError(t, svc.AddBatch(ctx, batch))
}

func TestUpdateBatch_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	batch := NewBatch(medicineID, "LOT-A", 10, date(2025, 6, 1))
	repo := newMemRepo(batch)
	svc := newLedger(repo, medicineID)

	newQty := types.Quantity(8)
	updated, err := svc.UpdateBatch(ctx, batch.ID, BatchUpdate{Quantity: &newQty})
	require.NoError(t, err)

	assert.EqualValues(t, 8, updated.Quantity)
	assert.Equal(t, "LOT-A", updated.BatchNumber)
	assert.Equal(t, date(2025, 6, 1), updated.ExpiryDate)
}

func TestUpdateBatch_RejectsNegativeQuantity(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	batch := NewBatch(medicineID, "LOT-A", 10, date(2025, 6, 1))
	repo := newMemRepo(batch)
	svc := newLedger(repo, medicineID)

	bad := types.Quantity(-1)
	_, err := svc.UpdateBatch(ctx, batch.ID, BatchUpdate{Quantity: &bad})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// Ledger untouched.
	stored, _ := repo.GetBatch(ctx, batch.ID)
	assert.EqualValues(t, 10, stored.Quantity)
}

func TestUpdateBatch_DisposedBatchIsFrozen(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	batch := NewBatch(medicineID, "LOT-A", 10, date(2025, 6, 1))
	batch.Dispose("recall", time.Now().UTC())
	repo := newMemRepo(batch)
	svc := newLedger(repo, medicineID)

	newQty := types.Quantity(20)
	_, err := svc.UpdateBatch(ctx, batch.ID, BatchUpdate{Quantity: &newQty})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBatchDisposed, appErr.Code)
}

func TestDisposeBatch_PreservesQuantity(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	batch := NewBatch(medicineID, "LOT-A", 42, date(2025, 1, 1))
	repo := newMemRepo(batch)
	svc := newLedger(repo, medicineID)

	disposed, err := svc.DisposeBatch(ctx, batch.ID, "past expiry")
	require.NoError(t, err)

	assert.True(t, disposed.IsDisposed)
	require.NotNil(t, disposed.DisposalReason)
	assert.Equal(t, "past expiry", *disposed.DisposalReason)
	assert.NotNil(t, disposed.DisposedAt)
	// Quantity is the historical record of what was destroyed.
	assert.EqualValues(t, 42, disposed.Quantity)
}

func TestDisposeBatch_RequiresReason(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	batch := NewBatch(medicineID, "LOT-A", 5, date(2025, 1, 1))
	svc := newLedger(newMemRepo(batch), medicineID)

	for _, reason := range []string{"", "   "} {
		_, err := svc.DisposeBatch(ctx, batch.ID, reason)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestDisposeBatch_AlreadyDisposed(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	batch := NewBatch(medicineID, "LOT-A", 5, date(2025, 1, 1))
	svc := newLedger(newMemRepo(batch), medicineID)

	_, err := svc.DisposeBatch(ctx, batch.ID, "damaged")
	require.NoError(t, err)

	_, err = svc.DisposeBatch(ctx, batch.ID, "damaged again")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBatchDisposed, appErr.Code)
}

func TestExpiringBatches_NegativeWindowRejected(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(newMemRepo())

	_, err := svc.ExpiringBatches(ctx, -1)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestExpiringAndExpiredBatches(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	past := NewBatch(medicineID, "LOT-PAST", 5, today.AddDate(0, 0, -10))
	soon := NewBatch(medicineID, "LOT-SOON", 5, today.AddDate(0, 0, 7))
	far := NewBatch(medicineID, "LOT-FAR", 5, today.AddDate(0, 0, 90))
	emptyPast := NewBatch(medicineID, "LOT-DRAINED", 0, today.AddDate(0, 0, -3))
	disposedPast := NewBatch(medicineID, "LOT-GONE", 5, today.AddDate(0, 0, -5))
	disposedPast.Dispose("destroyed", today)

	repo := newMemRepo(past, soon, far, emptyPast, disposedPast)
	svc := newLedger(repo, medicineID)

	expiring, err := svc.ExpiringBatches(ctx, 30)
	require.NoError(t, err)
	ids := batchIDs(expiring)
	assert.Contains(t, ids, past.ID)
	assert.Contains(t, ids, soon.ID)
	assert.NotContains(t, ids, far.ID)
	assert.NotContains(t, ids, disposedPast.ID)

	expired, err := svc.ExpiredBatches(ctx)
	require.NoError(t, err)
	ids = batchIDs(expired)
	assert.Contains(t, ids, past.ID)
	assert.NotContains(t, ids, soon.ID)
	// Drained batches have nothing left to dispose.
	assert.NotContains(t, ids, emptyPast.ID)
	assert.NotContains(t, ids, disposedPast.ID)
}

func batchIDs(batches []Batch) []id.ID {
	out := make([]id.ID, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.ID)
	}
	return out
}
