package cart

import (
	"context"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/inventory"
	"dispensary/pkg/logger"
)

// Service enforces the cart contract: a user may hold up to the medicine's
// available stock plus whatever they already reserve themselves.
//
// The availability check and the write are not locked against other carts;
// two users can race past the check and jointly over-reserve. That is
// accepted: the allocator re-checks under row locks at order time.
type Service struct {
	repo      Repository
	calc      *inventory.Calculator
	medicines inventory.MedicineChecker
}

func NewService(repo Repository, calc *inventory.Calculator, medicines inventory.MedicineChecker) *Service {
	return &Service{repo: repo, calc: calc, medicines: medicines}
}

// AddToCart adds requestedQty units on top of the user's existing line.
// Fails with Insufficient Stock carrying the maximum total the user could
// hold instead.
func (s *Service) AddToCart(ctx context.Context, userID, medicineID id.ID, requestedQty types.Quantity) (*Line, error) {
	if !requestedQty.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	existing, err := s.getExisting(ctx, userID, medicineID)
	if err != nil {
		return nil, err
	}

	var existingQty types.Quantity
	if existing != nil {
		existingQty = existing.Quantity
	}

	return s.setQuantity(ctx, userID, medicineID, existing, existingQty+requestedQty)
}

// SetQuantity replaces the user's line quantity outright, subject to the
// same availability ceiling. Zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, medicineID id.ID, quantity types.Quantity) (*Line, error) {
	if quantity.IsNegative() {
		return nil, apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	existing, err := s.getExisting(ctx, userID, medicineID)
	if err != nil {
		return nil, err
	}

	if quantity.IsZero() {
		if existing == nil {
			return nil, apperror.NewNotFound("cart line", medicineID.String())
		}
		return nil, s.repo.DeleteLine(ctx, userID, medicineID)
	}

	return s.setQuantity(ctx, userID, medicineID, existing, quantity)
}

// setQuantity validates newTotal against availability excluding the user's
// own reservation and writes the line.
func (s *Service) setQuantity(ctx context.Context, userID, medicineID id.ID, existing *Line, newTotal types.Quantity) (*Line, error) {
	// Excluding the user's own line means maxAllowed already includes
	// the headroom their current reservation occupies.
	maxAllowed, err := s.calc.AvailableStock(ctx, medicineID, &userID)
	if err != nil {
		return nil, err
	}

	if newTotal > maxAllowed {
		return nil, apperror.NewInsufficientStock(medicineID.String(), newTotal.Int64(), maxAllowed.Int64()).
			WithDetail("max_quantity", maxAllowed.Int64())
	}

	line := existing
	if line == nil {
		line = NewLine(userID, medicineID, newTotal)
	} else {
		line.Quantity = newTotal
		line.Touch()
	}

	if err := line.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertLine(ctx, line); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "cart line updated",
		"user_id", userID, "medicine_id", medicineID, "quantity", newTotal)

	return line, nil
}

// Remove deletes the user's line for the medicine.
func (s *Service) Remove(ctx context.Context, userID, medicineID id.ID) error {
	existing, err := s.getExisting(ctx, userID, medicineID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperror.NewNotFound("cart line", medicineID.String())
	}
	return s.repo.DeleteLine(ctx, userID, medicineID)
}

// GetCart returns the user's current lines.
func (s *Service) GetCart(ctx context.Context, userID id.ID) ([]Line, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) getExisting(ctx context.Context, userID, medicineID id.ID) (*Line, error) {
	exists, err := s.medicines.Exists(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewNotFound("medicine", medicineID.String())
	}
	return s.repo.GetLine(ctx, userID, medicineID)
}
