package inventory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

// Mock objects shared by the package tests.

// memRepo is an in-memory Repository. EligibleForUpdate does not lock
// anything; single-goroutine tests don't need it to.
type memRepo struct {
	batches map[id.ID]*Batch

	// failDecrementFor simulates a guard rejection for one batch.
	failDecrementFor id.ID
}

func newMemRepo(batches ...*Batch) *memRepo {
	r := &memRepo{batches: make(map[id.ID]*Batch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *memRepo) CreateBatch(ctx context.Context, batch *Batch) error {
	r.batches[batch.ID] = batch
	return nil
}

func (r *memRepo) GetBatch(ctx context.Context, batchID id.ID) (*Batch, error) {
	if b, ok := r.batches[batchID]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, errNotFound(batchID)
}

func (r *memRepo) UpdateBatch(ctx context.Context, batch *Batch) error {
	if _, ok := r.batches[batch.ID]; !ok {
		return errNotFound(batch.ID)
	}
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

func (r *memRepo) ListByMedicine(ctx context.Context, medicineID id.ID) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if b.MedicineID == medicineID {
			out = append(out, *b)
		}
	}
	sortFIFO(out)
	return out, nil
}

func (r *memRepo) EligibleForUpdate(ctx context.Context, medicineID id.ID) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if b.MedicineID == medicineID && b.Eligible() {
			out = append(out, *b)
		}
	}
	sortFIFO(out)
	return out, nil
}

func (r *memRepo) DecrementQuantity(ctx context.Context, batchID id.ID, qty types.Quantity) (bool, error) {
	if batchID == r.failDecrementFor {
		return false, nil
	}
	b, ok := r.batches[batchID]
	if !ok {
		return false, errNotFound(batchID)
	}
	if b.Quantity < qty {
		return false, nil
	}
	b.Quantity -= qty
	return true, nil
}

func (r *memRepo) TotalStock(ctx context.Context, medicineID id.ID) (types.Quantity, error) {
	var total types.Quantity
	for _, b := range r.batches {
		if b.MedicineID == medicineID && !b.IsDisposed {
			total += b.Quantity
		}
	}
	return total, nil
}

func (r *memRepo) Expiring(ctx context.Context, before time.Time) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if !b.IsDisposed && b.ExpiryDate.Before(before) {
			out = append(out, *b)
		}
	}
	sortFIFO(out)
	return out, nil
}

func (r *memRepo) Expired(ctx context.Context, asOf time.Time) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if !b.IsDisposed && b.Quantity.IsPositive() && b.ExpiryDate.Before(asOf) {
			out = append(out, *b)
		}
	}
	sortFIFO(out)
	return out, nil
}

func sortFIFO(batches []Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
		}
		return bytes.Compare(batches[i].ID[:], batches[j].ID[:]) < 0
	})
}

func errNotFound(batchID id.ID) error {
	return &notFoundError{batchID}
}

type notFoundError struct{ batchID id.ID }

func (e *notFoundError) Error() string { return "batch not found: " + e.batchID.String() }

// nopTx runs the function directly, no transaction.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stubMedicines answers Exists from a fixed set.
type stubMedicines struct {
	known map[id.ID]bool
}

func (s *stubMedicines) Exists(ctx context.Context, medicineID id.ID) (bool, error) {
	return s.known[medicineID], nil
}

// stubReservations reports a fixed reserved quantity, optionally reduced
// for a specific excluded user.
type stubReservations struct {
	total   types.Quantity
	byUser  map[id.ID]types.Quantity
	lastSum types.Quantity
}

func (s *stubReservations) ReservedQuantity(ctx context.Context, medicineID id.ID, excludeUserID *id.ID) (types.Quantity, error) {
	total := s.total
	if excludeUserID != nil {
		total -= s.byUser[*excludeUserID]
	}
	s.lastSum = total
	return total, nil
}

// date builds a UTC date for readability in tests.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
