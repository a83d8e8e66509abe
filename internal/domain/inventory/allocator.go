package inventory

import (
	"bytes"
	"context"
	"sort"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/pkg/logger"
)

// Allocation is one slice of an allocation plan: take Quantity units from
// the given batch.
type Allocation struct {
	BatchID  id.ID
	Quantity types.Quantity
}

// BuildPlan splits a requested quantity across batches, draining the batch
// with the earliest expiry date first (ties broken by ascending batch id,
// so concurrent transactions lock rows in the same order).
//
// Batches that are disposed or empty are skipped. When the eligible stock
// cannot cover the request the whole plan fails; no partial plan is ever
// returned.
func BuildPlan(medicineID id.ID, batches []Batch, requested types.Quantity) ([]Allocation, error) {
	if !requested.IsPositive() {
		return nil, apperror.NewValidation("requested quantity must be positive").
			WithDetail("field", "quantity")
	}

	eligible := make([]Batch, 0, len(batches))
	for _, b := range batches {
		if b.Eligible() {
			eligible = append(eligible, b)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if !eligible[i].ExpiryDate.Equal(eligible[j].ExpiryDate) {
			return eligible[i].ExpiryDate.Before(eligible[j].ExpiryDate)
		}
		return bytes.Compare(eligible[i].ID[:], eligible[j].ID[:]) < 0
	})

	var available types.Quantity
	for _, b := range eligible {
		available += b.Quantity
	}
	if available < requested {
		return nil, apperror.NewInsufficientStock(medicineID.String(), requested.Int64(), available.Int64()).
			WithDetail("shortage", (requested - available).Int64())
	}

	plan := make([]Allocation, 0, 4)
	remaining := requested
	for _, b := range eligible {
		take := remaining.Min(b.Quantity)
		plan = append(plan, Allocation{BatchID: b.ID, Quantity: take})
		remaining -= take
		if remaining.IsZero() {
			break
		}
	}

	return plan, nil
}

// Allocator applies allocation plans against locked rows. It must run
// inside a transaction; every decrement either lands or the caller's
// transaction rolls the whole order back.
type Allocator struct {
	repo Repository
}

func NewAllocator(repo Repository) *Allocator {
	return &Allocator{repo: repo}
}

// Allocate locks the medicine's eligible batches, builds a FIFO plan for
// the requested quantity and applies the decrements. Returns the applied
// plan so callers can tag order items with their source batches.
func (a *Allocator) Allocate(ctx context.Context, medicineID id.ID, requested types.Quantity) ([]Allocation, error) {
	batches, err := a.repo.EligibleForUpdate(ctx, medicineID)
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(medicineID, batches, requested)
	if err != nil {
		return nil, err
	}

	for _, alloc := range plan {
		ok, err := a.repo.DecrementQuantity(ctx, alloc.BatchID, alloc.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Rows are locked, so a failed guard means the plan and
			// the stored state diverged. Abort rather than
			// short-ship.
			logger.Error(ctx, "batch decrement guard rejected a locked row",
				"batch_id", alloc.BatchID, "quantity", alloc.Quantity)
			return nil, apperror.NewConcurrentModification("batch", alloc.BatchID.String())
		}
	}

	return plan, nil
}
