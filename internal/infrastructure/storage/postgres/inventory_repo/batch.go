// Package inventory_repo provides the PostgreSQL batch ledger.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/infrastructure/storage/postgres"
)

const batchesTable = "inv_batches"

// BatchRepo implements inventory.Repository.
type BatchRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

func NewBatchRepo(txManager *postgres.TxManager) *BatchRepo {
	return &BatchRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[inventory.Batch](),
	}
}

func (r *BatchRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *BatchRepo) CreateBatch(ctx context.Context, batch *inventory.Batch) error {
	data := postgres.StructToMap(*batch)

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder.Insert(batchesTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) GetBatch(ctx context.Context, batchID id.ID) (*inventory.Batch, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(batchesTable).
		Where(squirrel.Eq{"id": batchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batch inventory.Batch
	if err := pgxscan.Get(ctx, r.querier(ctx), &batch, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", batchID.String())
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &batch, nil
}

func (r *BatchRepo) UpdateBatch(ctx context.Context, batch *inventory.Batch) error {
	data := postgres.StructToMap(*batch)

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "version" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	filtered["updated_at"] = time.Now().UTC()

	q := r.builder.
		Update(batchesTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": batch.ID}).
		Where(squirrel.Eq{"version": batch.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("batch", batch.ID.String())
	}

	batch.Version++
	return nil
}

func (r *BatchRepo) ListByMedicine(ctx context.Context, medicineID id.ID) ([]inventory.Batch, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(batchesTable).
		Where(squirrel.Eq{"medicine_id": medicineID}).
		OrderBy("expiry_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []inventory.Batch
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	return batches, nil
}

// EligibleForUpdate locks the medicine's sellable batches for the rest of
// the transaction. The fixed (expiry_date, id) ordering means concurrent
// allocations acquire row locks in the same sequence instead of
// deadlocking.
func (r *BatchRepo) EligibleForUpdate(ctx context.Context, medicineID id.ID) ([]inventory.Batch, error) {
	sql := `
		SELECT id, deletion_mark, version, created_at, updated_at,
		       medicine_id, batch_number, quantity, expiry_date,
		       is_disposed, disposal_reason, disposed_at
		FROM inv_batches
		WHERE medicine_id = $1 AND is_disposed = false AND quantity >= 1
		ORDER BY expiry_date, id
		FOR UPDATE
	`

	var batches []inventory.Batch
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, medicineID); err != nil {
		return nil, fmt.Errorf("lock batches: %w", err)
	}
	return batches, nil
}

// DecrementQuantity subtracts qty with a non-negative guard in the WHERE
// clause; zero rows affected means the guard rejected it.
func (r *BatchRepo) DecrementQuantity(ctx context.Context, batchID id.ID, qty types.Quantity) (bool, error) {
	sql := `
		UPDATE inv_batches
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
	`

	result, err := r.querier(ctx).Exec(ctx, sql, batchID, qty)
	if err != nil {
		return false, fmt.Errorf("decrement batch: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *BatchRepo) TotalStock(ctx context.Context, medicineID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM inv_batches
		WHERE medicine_id = $1 AND is_disposed = false
	`

	var total int64
	row := r.querier(ctx).QueryRow(ctx, sql, medicineID)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum stock: %w", err)
	}
	return types.Quantity(total), nil
}

func (r *BatchRepo) Expiring(ctx context.Context, before time.Time) ([]inventory.Batch, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(batchesTable).
		Where(squirrel.Eq{"is_disposed": false}).
		Where(squirrel.Lt{"expiry_date": before}).
		OrderBy("expiry_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []inventory.Batch
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select expiring batches: %w", err)
	}
	return batches, nil
}

func (r *BatchRepo) Expired(ctx context.Context, asOf time.Time) ([]inventory.Batch, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(batchesTable).
		Where(squirrel.Eq{"is_disposed": false}).
		Where(squirrel.GtOrEq{"quantity": 1}).
		Where(squirrel.Lt{"expiry_date": asOf}).
		OrderBy("expiry_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []inventory.Batch
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select expired batches: %w", err)
	}
	return batches, nil
}
