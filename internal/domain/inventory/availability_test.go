package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

func TestAvailableStock_SubtractsReservations(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()

	repo := newMemRepo(
		NewBatch(medicineID, "LOT-A", 10, date(2025, 3, 1)),
		NewBatch(medicineID, "LOT-B", 10, date(2025, 4, 1)),
	)
	reservations := &stubReservations{total: 15}

	calc := NewCalculator(repo, reservations)
	available, err := calc.AvailableStock(ctx, medicineID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, available)
}

func TestAvailableStock_FlooredAtZero(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()

	repo := newMemRepo(NewBatch(medicineID, "LOT-A", 10, date(2025, 3, 1)))

	// Over-reservation happens when two carts race; availability must
	// still read as zero, never negative.
	reservations := &stubReservations{total: 13}

	calc := NewCalculator(repo, reservations)
	available, err := calc.AvailableStock(ctx, medicineID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, available)
}

func TestAvailableStock_IgnoresDisposedBatches(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()

	disposed := NewBatch(medicineID, "LOT-OLD", 100, date(2025, 1, 1))
	disposed.Dispose("expired", date(2025, 1, 2))
	repo := newMemRepo(disposed, NewBatch(medicineID, "LOT-NEW", 7, date(2026, 1, 1)))

	calc := NewCalculator(repo, &stubReservations{})
	available, err := calc.AvailableStock(ctx, medicineID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, available)
}

func TestAvailableStock_ExcludesOwnReservation(t *testing.T) {
	ctx := context.Background()
	medicineID := id.New()
	userID := id.New()

	repo := newMemRepo(NewBatch(medicineID, "LOT-A", 4, date(2025, 3, 1)))

	// The user's own 4 units are the only reservation. Stock for
	// everyone else is zero, but the user can still see their own
	// headroom.
	reservations := &stubReservations{
		total:  4,
		byUser: map[id.ID]types.Quantity{userID: 4},
	}
	calc := NewCalculator(repo, reservations)

	everyone, err := calc.AvailableStock(ctx, medicineID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, everyone)

	own, err := calc.AvailableStock(ctx, medicineID, &userID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, own)
}
