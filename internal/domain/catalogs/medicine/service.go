package medicine

import (
	"context"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/tx"
	"dispensary/internal/domain"
	"dispensary/pkg/logger"
)

// Service manages the medicine catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

func (s *Service) Create(ctx context.Context, m *Medicine) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	if m.Code != "" {
		existing, err := s.repo.GetByCode(ctx, m.Code)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return apperror.NewDuplicate("medicine", "code", m.Code)
		}
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, m); err != nil {
			return err
		}
		logger.Info(ctx, "medicine created", "medicine_id", m.ID, "code", m.Code)
		return nil
	})
}

func (s *Service) GetByID(ctx context.Context, medicineID id.ID) (*Medicine, error) {
	return s.repo.GetByID(ctx, medicineID)
}

func (s *Service) Update(ctx context.Context, m *Medicine) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	// Version check happens in the repository (optimistic lock on the
	// UPDATE itself).
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, m)
	})
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[Medicine], error) {
	return s.repo.List(ctx, filter)
}

// MarkDeleted soft-deletes a catalog entry. Existing batches stay in the
// ledger for the regulatory trail but the medicine stops being sellable.
func (s *Service) MarkDeleted(ctx context.Context, medicineID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, medicineID)
		if err != nil {
			return err
		}
		if m.DeletionMark {
			return nil
		}
		m.MarkDeleted()

		logger.Info(ctx, "medicine marked deleted", "medicine_id", medicineID)
		return s.repo.Update(ctx, m)
	})
}
