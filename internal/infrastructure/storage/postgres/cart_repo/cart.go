// Package cart_repo provides the PostgreSQL cart store. It doubles as the
// reservation source for availability math.
package cart_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/cart"
	"dispensary/internal/infrastructure/storage/postgres"
)

const cartLinesTable = "cart_lines"

// CartRepo implements cart.Repository and inventory.ReservationSource.
type CartRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

func NewCartRepo(txManager *postgres.TxManager) *CartRepo {
	return &CartRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[cart.Line](),
	}
}

func (r *CartRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *CartRepo) GetLine(ctx context.Context, userID, medicineID id.ID) (*cart.Line, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(cartLinesTable).
		Where(squirrel.Eq{"user_id": userID, "medicine_id": medicineID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var line cart.Line
	if err := pgxscan.Get(ctx, r.querier(ctx), &line, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	return &line, nil
}

// UpsertLine writes the line, replacing the quantity when the user already
// has one for the medicine. (user_id, medicine_id) is unique.
func (r *CartRepo) UpsertLine(ctx context.Context, line *cart.Line) error {
	sql := `
		INSERT INTO cart_lines (
			id, deletion_mark, version, created_at, updated_at,
			user_id, medicine_id, quantity
		) VALUES ($1, false, 1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, medicine_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			version = cart_lines.version + 1,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.querier(ctx).Exec(ctx, sql,
		line.ID, line.CreatedAt, line.UpdatedAt,
		line.UserID, line.MedicineID, line.Quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) DeleteLine(ctx context.Context, userID, medicineID id.ID) error {
	q := r.builder.
		Delete(cartLinesTable).
		Where(squirrel.Eq{"user_id": userID, "medicine_id": medicineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) ListByUser(ctx context.Context, userID id.ID) ([]cart.Line, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(cartLinesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []cart.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select cart lines: %w", err)
	}
	return lines, nil
}

func (r *CartRepo) DeleteByUser(ctx context.Context, userID id.ID) error {
	q := r.builder.
		Delete(cartLinesTable).
		Where(squirrel.Eq{"user_id": userID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ReservedQuantity sums cart reservations for the medicine across users.
func (r *CartRepo) ReservedQuantity(ctx context.Context, medicineID id.ID, excludeUserID *id.ID) (types.Quantity, error) {
	q := r.builder.
		Select("COALESCE(SUM(quantity), 0)").
		From(cartLinesTable).
		Where(squirrel.Eq{"medicine_id": medicineID})

	if excludeUserID != nil {
		q = q.Where(squirrel.NotEq{"user_id": *excludeUserID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	row := r.querier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum reservations: %w", err)
	}
	return types.Quantity(total), nil
}
