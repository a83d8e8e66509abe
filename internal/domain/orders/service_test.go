package orders

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/audit"
	"dispensary/internal/domain/cart"
	"dispensary/internal/domain/catalogs/medicine"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/domain/prescription"
)

// Mock objects. The world mimics a database: a transaction snapshots all
// mutable state and restores it when the function fails, so the
// all-or-nothing behavior of placement is observable in tests.

type world struct {
	batches map[id.ID]*inventory.Batch
	carts   map[id.ID][]cart.Line // by user
	meds    map[id.ID]*medicine.Medicine
	orders  map[id.ID]*Order
	items   map[id.ID][]Item // by order
}

func newWorld() *world {
	return &world{
		batches: make(map[id.ID]*inventory.Batch),
		carts:   make(map[id.ID][]cart.Line),
		meds:    make(map[id.ID]*medicine.Medicine),
		orders:  make(map[id.ID]*Order),
		items:   make(map[id.ID][]Item),
	}
}

func (w *world) snapshot() *world {
	s := newWorld()
	for k, v := range w.batches {
		copied := *v
		s.batches[k] = &copied
	}
	for k, v := range w.carts {
		s.carts[k] = append([]cart.Line(nil), v...)
	}
	for k, v := range w.meds {
		copied := *v
		s.meds[k] = &copied
	}
	for k, v := range w.orders {
		copied := *v
		s.orders[k] = &copied
	}
	for k, v := range w.items {
		s.items[k] = append([]Item(nil), v...)
	}
	return s
}

func (w *world) restore(s *world) {
	w.batches = s.batches
	w.carts = s.carts
	w.meds = s.meds
	w.orders = s.orders
	w.items = s.items
}

// worldTx restores the snapshot when fn fails, like a DB rollback.
type worldTx struct{ w *world }

func (t worldTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.w.snapshot()
	if err := fn(ctx); err != nil {
		t.w.restore(snap)
		return err
	}
	return nil
}

// --- repository facades over world ---

type worldBatches struct{ w *world }

func (r worldBatches) CreateBatch(ctx context.Context, b *inventory.Batch) error { panic("unused") }
func (r worldBatches) GetBatch(ctx context.Context, batchID id.ID) (*inventory.Batch, error) {
	b := r.w.batches[batchID]
	copied := *b
	return &copied, nil
}
func (r worldBatches) UpdateBatch(ctx context.Context, b *inventory.Batch) error { panic("unused") }
func (r worldBatches) ListByMedicine(ctx context.Context, medicineID id.ID) ([]inventory.Batch, error) {
	panic("unused")
}
func (r worldBatches) EligibleForUpdate(ctx context.Context, medicineID id.ID) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.w.batches {
		if b.MedicineID == medicineID && b.Eligible() {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}
func (r worldBatches) DecrementQuantity(ctx context.Context, batchID id.ID, qty types.Quantity) (bool, error) {
	b := r.w.batches[batchID]
	if b == nil || b.Quantity < qty {
		return false, nil
	}
	b.Quantity -= qty
	return true, nil
}
func (r worldBatches) TotalStock(ctx context.Context, medicineID id.ID) (types.Quantity, error) {
	panic("unused")
}
func (r worldBatches) Expiring(ctx context.Context, before time.Time) ([]inventory.Batch, error) {
	panic("unused")
}
func (r worldBatches) Expired(ctx context.Context, asOf time.Time) ([]inventory.Batch, error) {
	panic("unused")
}

type worldCarts struct{ w *world }

func (r worldCarts) ListByUser(ctx context.Context, userID id.ID) ([]cart.Line, error) {
	return append([]cart.Line(nil), r.w.carts[userID]...), nil
}
func (r worldCarts) DeleteByUser(ctx context.Context, userID id.ID) error {
	delete(r.w.carts, userID)
	return nil
}

type worldMedicines struct{ w *world }

func (r worldMedicines) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*medicine.Medicine, error) {
	out := make(map[id.ID]*medicine.Medicine)
	for _, mID := range ids {
		if m, ok := r.w.meds[mID]; ok {
			out[mID] = m
		}
	}
	return out, nil
}

type worldOrders struct{ w *world }

func (r worldOrders) CreateOrder(ctx context.Context, order *Order) error {
	copied := *order
	r.w.orders[order.ID] = &copied
	return nil
}
func (r worldOrders) CreateItems(ctx context.Context, items []Item) error {
	for _, it := range items {
		r.w.items[it.OrderID] = append(r.w.items[it.OrderID], it)
	}
	return nil
}
func (r worldOrders) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	if o, ok := r.w.orders[orderID]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, apperror.NewNotFound("order", orderID.String())
}
func (r worldOrders) GetItems(ctx context.Context, orderID id.ID) ([]Item, error) {
	return append([]Item(nil), r.w.items[orderID]...), nil
}
func (r worldOrders) ListByUser(ctx context.Context, userID id.ID) ([]Order, error) {
	var out []Order
	for _, o := range r.w.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func newTestService(w *world) *Service {
	return NewService(
		worldOrders{w},
		worldCarts{w},
		worldMedicines{w},
		inventory.NewAllocator(worldBatches{w}),
		prescription.MustPolicy(prescription.DefaultRule),
		worldTx{w},
		audit.Nop{},
	)
}

func addMedicine(w *world, price string) *medicine.Medicine {
	m := medicine.New("MED-"+id.New().String()[:8], "Test Medicine", types.MustMoney(price))
	w.meds[m.ID] = m
	return m
}

func addBatch(w *world, medicineID id.ID, qty int64, expiry time.Time) *inventory.Batch {
	b := inventory.NewBatch(medicineID, "LOT", types.Quantity(qty), expiry)
	w.batches[b.ID] = b
	return b
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlaceOrder_FIFOAcrossBatches(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	userID := id.New()

	med := addMedicine(w, "4.00")
	b1 := addBatch(w, med.ID, 10, date(2025, 3, 1))
	b2 := addBatch(w, med.ID, 10, date(2025, 4, 1))
	w.carts[userID] = []cart.Line{*cart.NewLine(userID, med.ID, 15)}

	svc := newTestService(w)
	order, err := svc.PlaceOrder(ctx, userID, nil)
	require.NoError(t, err)

	// Two items: 10 drawn from the earlier batch, 5 from the later.
	items := w.items[order.ID]
	require.Len(t, items, 2)
	assert.Equal(t, b1.ID, items[0].BatchID)
	assert.EqualValues(t, 10, items[0].Quantity)
	assert.Equal(t, b2.ID, items[1].BatchID)
	assert.EqualValues(t, 5, items[1].Quantity)

	assert.EqualValues(t, 0, w.batches[b1.ID].Quantity)
	assert.EqualValues(t, 5, w.batches[b2.ID].Quantity)

	// Cart consumed, total priced at time of sale.
	assert.Empty(t, w.carts[userID])
	assert.True(t, order.TotalAmount.Equal(types.MustMoney("60.00")))
	assert.Equal(t, StatusPlaced, order.Status)
}

func TestPlaceOrder_ShortageRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	userID := id.New()

	medA := addMedicine(w, "1.00")
	medB := addMedicine(w, "2.00")
	addBatch(w, medA.ID, 10, date(2025, 3, 1))
	bShort := addBatch(w, medB.ID, 2, date(2025, 3, 1))

	// medA covers its line; medB is short by 1.
	w.carts[userID] = []cart.Line{
		*cart.NewLine(userID, medA.ID, 5),
		*cart.NewLine(userID, medB.ID, 3),
	}

	svc := newTestService(w)
	_, err := svc.PlaceOrder(ctx, userID, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No partial effects: ledger restored, cart intact, no orders.
	for _, b := range w.batches {
		if b.MedicineID == medA.ID {
			assert.EqualValues(t, 10, b.Quantity)
		}
	}
	assert.EqualValues(t, 2, w.batches[bShort.ID].Quantity)
	assert.Len(t, w.carts[userID], 2)
	assert.Empty(t, w.orders)
}

func TestPlaceOrder_PrescriptionGate(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	userID := id.New()

	med := addMedicine(w, "10.00")
	med.Schedule = medicine.ScheduleH
	addBatch(w, med.ID, 10, date(2025, 3, 1))
	w.carts[userID] = []cart.Line{*cart.NewLine(userID, med.ID, 2)}

	svc := newTestService(w)

	_, err := svc.PlaceOrder(ctx, userID, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePrescriptionRequired, appErr.Code)
	assert.Len(t, w.carts[userID], 1) // cart untouched

	// Same order with an approved prescription goes through.
	order, err := svc.PlaceOrder(ctx, userID, map[id.ID]bool{med.ID: true})
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := newTestService(w)

	_, err := svc.PlaceOrder(ctx, id.New(), nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestPlaceOrder_DeletedMedicine(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	userID := id.New()

	med := addMedicine(w, "1.00")
	med.MarkDeleted()
	addBatch(w, med.ID, 10, date(2025, 3, 1))
	w.carts[userID] = []cart.Line{*cart.NewLine(userID, med.ID, 1)}

	svc := newTestService(w)
	_, err := svc.PlaceOrder(ctx, userID, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetOrder_OwnershipCheck(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, stranger := id.New(), id.New()

	med := addMedicine(w, "1.00")
	addBatch(w, med.ID, 10, date(2025, 3, 1))
	w.carts[owner] = []cart.Line{*cart.NewLine(owner, med.ID, 1)}

	svc := newTestService(w)
	order, err := svc.PlaceOrder(ctx, owner, nil)
	require.NoError(t, err)

	_, items, err := svc.GetOrder(ctx, order.ID, owner, false)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, _, err = svc.GetOrder(ctx, order.ID, stranger, false)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// Staff may read any order.
	_, _, err = svc.GetOrder(ctx, order.ID, stranger, true)
	assert.NoError(t, err)
}
