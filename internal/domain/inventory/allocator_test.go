package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

func TestBuildPlan_FIFOByExpiry(t *testing.T) {
	medicineID := id.New()

	b1 := NewBatch(medicineID, "LOT-A", 5, date(2025, 1, 1))
	b2 := NewBatch(medicineID, "LOT-B", 10, date(2025, 6, 1))

	// Earliest expiry is drained first even when passed out of order.
	plan, err := BuildPlan(medicineID, []Batch{*b2, *b1}, 7)
	require.NoError(t, err)

	require.Len(t, plan, 2)
	assert.Equal(t, b1.ID, plan[0].BatchID)
	assert.EqualValues(t, 5, plan[0].Quantity)
	assert.Equal(t, b2.ID, plan[1].BatchID)
	assert.EqualValues(t, 2, plan[1].Quantity)
}

func TestBuildPlan_SingleBatchWhenItCovers(t *testing.T) {
	medicineID := id.New()
	b1 := NewBatch(medicineID, "LOT-A", 10, date(2025, 3, 1))
	b2 := NewBatch(medicineID, "LOT-B", 10, date(2025, 4, 1))

	plan, err := BuildPlan(medicineID, []Batch{*b1, *b2}, 10)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, b1.ID, plan[0].BatchID)
	assert.EqualValues(t, 10, plan[0].Quantity)
}

func TestBuildPlan_TieBreakByBatchID(t *testing.T) {
	medicineID := id.New()
	expiry := date(2025, 5, 1)

	b1 := NewBatch(medicineID, "LOT-A", 3, expiry)
	b2 := NewBatch(medicineID, "LOT-B", 3, expiry)

	// Same plan regardless of input order.
	plan1, err := BuildPlan(medicineID, []Batch{*b1, *b2}, 4)
	require.NoError(t, err)
	plan2, err := BuildPlan(medicineID, []Batch{*b2, *b1}, 4)
	require.NoError(t, err)

	assert.Equal(t, plan1, plan2)
	require.Len(t, plan1, 2)
	assert.EqualValues(t, 3, plan1[0].Quantity)
	assert.EqualValues(t, 1, plan1[1].Quantity)
}

func TestBuildPlan_SkipsDisposedAndEmpty(t *testing.T) {
	medicineID := id.New()

	disposed := NewBatch(medicineID, "LOT-OLD", 100, date(2025, 1, 1))
	disposed.Dispose("water damage", date(2025, 1, 2))
	empty := NewBatch(medicineID, "LOT-EMPTY", 0, date(2025, 2, 1))
	good := NewBatch(medicineID, "LOT-GOOD", 5, date(2025, 6, 1))

	plan, err := BuildPlan(medicineID, []Batch{*disposed, *empty, *good}, 5)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, good.ID, plan[0].BatchID)
}

func TestBuildPlan_ShortageFailsWholeRequest(t *testing.T) {
	medicineID := id.New()
	b1 := NewBatch(medicineID, "LOT-A", 5, date(2025, 1, 1))
	b2 := NewBatch(medicineID, "LOT-B", 2, date(2025, 6, 1))

	plan, err := BuildPlan(medicineID, []Batch{*b1, *b2}, 10)
	assert.Nil(t, plan)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, medicineID.String(), appErr.Details["medicine_id"])
	assert.EqualValues(t, 10, appErr.Details["requested"])
	assert.EqualValues(t, 7, appErr.Details["available"])
	assert.EqualValues(t, 3, appErr.Details["shortage"])
}

func TestBuildPlan_RejectsNonPositiveRequest(t *testing.T) {
	medicineID := id.New()
	b := NewBatch(medicineID, "LOT-A", 5, date(2025, 1, 1))

	for _, qty := range []int64{0, -3} {
		_, err := BuildPlan(medicineID, []Batch{*b}, types.Quantity(qty))
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestAllocator_Allocate_DecrementsBatches(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()

	b1 := NewBatch(medicineID, "LOT-A", 10, date(2025, 3, 1))
	b2 := NewBatch(medicineID, "LOT-B", 10, date(2025, 4, 1))
	repo := newMemRepo(b1, b2)

	plan, err := NewAllocator(repo).Allocate(ctx, medicineID, 15)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	got1, _ := repo.GetBatch(ctx, b1.ID)
	got2, _ := repo.GetBatch(ctx, b2.ID)
	assert.EqualValues(t, 0, got1.Quantity)
	assert.EqualValues(t, 5, got2.Quantity)
}

func TestAllocator_Allocate_ShortageLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()

	b1 := NewBatch(medicineID, "LOT-A", 5, date(2025, 3, 1))
	repo := newMemRepo(b1)

	_, err := NewAllocator(repo).Allocate(ctx, medicineID, 6)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	got, _ := repo.GetBatch(ctx, b1.ID)
	assert.EqualValues(t, 5, got.Quantity)
}

func TestAllocator_Allocate_GuardRejectionAborts(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()

	b1 := NewBatch(medicineID, "LOT-A", 5, date(2025, 3, 1))
	b2 := NewBatch(medicineID, "LOT-B", 5, date(2025, 4, 1))
	repo := newMemRepo(b1, b2)
	repo.failDecrementFor = b2.ID

	_, err := NewAllocator(repo).Allocate(ctx, medicineID, 8)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConcurrentModification, appErr.Code)
}
