package orders

import (
	"bytes"
	"context"
	"sort"
	"time"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/tx"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/audit"
	"dispensary/internal/domain/cart"
	"dispensary/internal/domain/catalogs/medicine"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/domain/prescription"
	"dispensary/pkg/logger"
)

const entityTypeOrder = "order"

// CartSource is the slice of the cart repository the order flow needs:
// reading the lines to order and clearing them once placed.
type CartSource interface {
	ListByUser(ctx context.Context, userID id.ID) ([]cart.Line, error)
	DeleteByUser(ctx context.Context, userID id.ID) error
}

// MedicineSource resolves catalog entries for pricing and the dispensing
// policy.
type MedicineSource interface {
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*medicine.Medicine, error)
}

// BatchAllocator draws stock from the ledger. Must be called inside the
// placement transaction.
type BatchAllocator interface {
	Allocate(ctx context.Context, medicineID id.ID, requested types.Quantity) ([]inventory.Allocation, error)
}

// Service places orders. Placement is all-or-nothing: every cart line is
// allocated, priced and written, or the transaction rolls back and the
// ledger and cart are left exactly as they were.
type Service struct {
	repo      Repository
	carts     CartSource
	medicines MedicineSource
	allocator BatchAllocator
	policy    *prescription.Policy
	txManager tx.Manager
	auditor   audit.Recorder
}

func NewService(
	repo Repository,
	carts CartSource,
	medicines MedicineSource,
	allocator BatchAllocator,
	policy *prescription.Policy,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		carts:     carts,
		medicines: medicines,
		allocator: allocator,
		policy:    policy,
		txManager: txManager,
		auditor:   auditor,
	}
}

// PlaceOrder converts the user's whole cart into an order.
// prescriptionApprovals marks which medicines in the order carry an
// approved prescription.
func (s *Service) PlaceOrder(ctx context.Context, userID id.ID, prescriptionApprovals map[id.ID]bool) (*Order, error) {
	var placed *Order

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperror.NewValidation("cart is empty")
		}

		// Allocate in medicine id order so concurrent placements lock
		// batch groups in the same sequence.
		sort.Slice(lines, func(i, j int) bool {
			return bytes.Compare(lines[i].MedicineID[:], lines[j].MedicineID[:]) < 0
		})

		medicineIDs := make([]id.ID, 0, len(lines))
		for _, l := range lines {
			medicineIDs = append(medicineIDs, l.MedicineID)
		}
		meds, err := s.medicines.GetMany(ctx, medicineIDs)
		if err != nil {
			return err
		}

		order := NewOrder(userID)
		items := make([]Item, 0, len(lines))
		total := types.ZeroMoney()
		now := time.Now().UTC()

		for _, line := range lines {
			med, ok := meds[line.MedicineID]
			if !ok || med.DeletionMark {
				return apperror.NewNotFound("medicine", line.MedicineID.String())
			}

			allowed, err := s.policy.Allows(ctx, prescription.Input{
				Schedule:             med.Schedule,
				RequiresPrescription: med.RequiresPrescription,
				PrescriptionApproved: prescriptionApprovals[med.ID],
			})
			if err != nil {
				return err
			}
			if !allowed {
				return apperror.NewPrescriptionRequired(med.ID.String()).
					WithDetail("medicine_name", med.Name)
			}

			// Authoritative stock check: the allocator locks batch
			// rows, so shortage here rolls back the whole order
			// even when the cart's soft reservation looked fine.
			plan, err := s.allocator.Allocate(ctx, line.MedicineID, line.Quantity)
			if err != nil {
				return err
			}

			for _, alloc := range plan {
				item := Item{
					ID:         id.New(),
					OrderID:    order.ID,
					MedicineID: line.MedicineID,
					BatchID:    alloc.BatchID,
					Quantity:   alloc.Quantity,
					UnitPrice:  med.UnitPrice,
					CreatedAt:  now,
				}
				items = append(items, item)
				total = total.Add(item.LineTotal())
			}
		}

		order.TotalAmount = total
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := s.repo.CreateItems(ctx, items); err != nil {
			return err
		}
		if err := s.carts.DeleteByUser(ctx, userID); err != nil {
			return err
		}

		logger.Info(ctx, "order placed",
			"order_id", order.ID,
			"user_id", userID,
			"items", len(items),
			"total", order.TotalAmount)

		placed = order
		return s.auditor.Record(ctx, entityTypeOrder, order.ID, audit.ActionOrder, map[string]any{
			"user_id": userID.String(),
			"items":   len(items),
			"total":   order.TotalAmount.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// GetOrder returns the order header with its items. Customers may only
// read their own orders; staff may read any.
func (s *Service) GetOrder(ctx context.Context, orderID, requesterID id.ID, staff bool) (*Order, []Item, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !staff && order.UserID != requesterID {
		return nil, nil, apperror.NewForbidden("order belongs to another user")
	}

	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ListOrders returns the user's order headers, newest first.
func (s *Service) ListOrders(ctx context.Context, userID id.ID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
