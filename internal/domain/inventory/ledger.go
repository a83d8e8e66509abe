package inventory

import (
	"context"
	"strings"
	"time"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/tx"
	"dispensary/internal/domain/audit"
	"dispensary/pkg/logger"
)

const entityTypeBatch = "batch"

// Service is the batch ledger: receiving, correcting and disposing of
// stock, plus expiry reporting. Sale-side decrements go through Allocator.
type Service struct {
	repo      Repository
	medicines MedicineChecker
	txManager tx.Manager
	auditor   audit.Recorder
}

func NewService(repo Repository, medicines MedicineChecker, txManager tx.Manager, auditor audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		medicines: medicines,
		txManager: txManager,
		auditor:   auditor,
	}
}

// AddBatch records a newly received batch for a medicine.
func (s *Service) AddBatch(ctx context.Context, batch *Batch) error {
	if err := batch.Validate(ctx); err != nil {
		return err
	}
	// New batches must arrive with stock; a correction to zero is an
	// UpdateBatch concern.
	if !batch.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	exists, err := s.medicines.Exists(ctx, batch.MedicineID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("medicine", batch.MedicineID.String())
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			return err
		}

		logger.Info(ctx, "batch received",
			"batch_id", batch.ID,
			"medicine_id", batch.MedicineID,
			"quantity", batch.Quantity,
			"expiry_date", batch.ExpiryDate.Format("2006-01-02"))

		return s.auditor.Record(ctx, entityTypeBatch, batch.ID, audit.ActionCreate, map[string]any{
			"medicine_id":  batch.MedicineID.String(),
			"batch_number": batch.BatchNumber,
			"quantity":     batch.Quantity.Int64(),
			"expiry_date":  batch.ExpiryDate.Format("2006-01-02"),
		})
	})
}

// GetBatch returns a batch by id.
func (s *Service) GetBatch(ctx context.Context, batchID id.ID) (*Batch, error) {
	return s.repo.GetBatch(ctx, batchID)
}

// ListBatches returns every batch of a medicine, FIFO-ordered.
func (s *Service) ListBatches(ctx context.Context, medicineID id.ID) ([]Batch, error) {
	exists, err := s.medicines.Exists(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewNotFound("medicine", medicineID.String())
	}
	return s.repo.ListByMedicine(ctx, medicineID)
}

// UpdateBatch applies a partial correction to a batch. Disposed batches are
// frozen; corrections to them are rejected.
func (s *Service) UpdateBatch(ctx context.Context, batchID id.ID, upd BatchUpdate) (*Batch, error) {
	var updated *Batch

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.repo.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}

		if batch.IsDisposed {
			return apperror.NewBusinessRule(apperror.CodeBatchDisposed,
				"Disposed batches cannot be modified").
				WithDetail("batch_id", batchID.String())
		}

		changes := make(map[string]any)
		if upd.BatchNumber != nil {
			batch.BatchNumber = *upd.BatchNumber
			changes["batch_number"] = *upd.BatchNumber
		}
		if upd.Quantity != nil {
			batch.Quantity = *upd.Quantity
			changes["quantity"] = upd.Quantity.Int64()
		}
		if upd.ExpiryDate != nil {
			batch.ExpiryDate = *upd.ExpiryDate
			changes["expiry_date"] = upd.ExpiryDate.Format("2006-01-02")
		}
		if len(changes) == 0 {
			updated = batch
			return nil
		}

		if err := batch.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.UpdateBatch(ctx, batch); err != nil {
			return err
		}
		updated = batch

		return s.auditor.Record(ctx, entityTypeBatch, batch.ID, audit.ActionUpdate, changes)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DisposeBatch withdraws a batch from sale. The remaining quantity is kept
// on the record as the amount destroyed; the reason is mandatory for the
// regulatory trail.
func (s *Service) DisposeBatch(ctx context.Context, batchID id.ID, reason string) (*Batch, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidation("disposal reason is required").
			WithDetail("field", "reason")
	}

	var disposed *Batch

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.repo.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}

		if batch.IsDisposed {
			return apperror.NewBusinessRule(apperror.CodeBatchDisposed,
				"Batch is already disposed").
				WithDetail("batch_id", batchID.String())
		}

		batch.Dispose(reason, time.Now().UTC())
		if err := s.repo.UpdateBatch(ctx, batch); err != nil {
			return err
		}
		disposed = batch

		logger.Info(ctx, "batch disposed",
			"batch_id", batch.ID,
			"medicine_id", batch.MedicineID,
			"quantity_destroyed", batch.Quantity,
			"reason", reason)

		return s.auditor.Record(ctx, entityTypeBatch, batch.ID, audit.ActionDispose, map[string]any{
			"medicine_id":        batch.MedicineID.String(),
			"quantity_destroyed": batch.Quantity.Int64(),
			"reason":             reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return disposed, nil
}

// ExpiringBatches returns sellable batches that expire within the next
// withinDays days, for the pharmacist's markdown-or-return worklist.
func (s *Service) ExpiringBatches(ctx context.Context, withinDays int) ([]Batch, error) {
	if withinDays < 0 {
		return nil, apperror.NewValidation("withinDays cannot be negative").
			WithDetail("field", "withinDays")
	}
	cutoff := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, withinDays+1)
	return s.repo.Expiring(ctx, cutoff)
}

// ExpiredBatches returns batches already past expiry and not yet disposed,
// the candidates for DisposeBatch.
func (s *Service) ExpiredBatches(ctx context.Context) ([]Batch, error) {
	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	return s.repo.Expired(ctx, asOf)
}
