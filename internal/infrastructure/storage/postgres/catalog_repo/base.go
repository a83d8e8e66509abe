// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/domain"
	"dispensary/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	selectCols []string
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](txManager *postgres.TxManager, tableName string) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the current transaction's querier, or the pool.
func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// Update modifies an existing entity with optimistic locking: the entity's
// version must match the stored row, and the UPDATE bumps it.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID)
	}

	return nil
}

// GetByID fetches one entity by primary key.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (*T, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entity T
	if err := pgxscan.Get(ctx, r.Querier(ctx), &entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return nil, fmt.Errorf("get %s: %w", r.tableName, err)
	}

	return &entity, nil
}

// GetByCode fetches one non-deleted entity by its code.
func (r *BaseCatalogRepo[T]) GetByCode(ctx context.Context, code string) (*T, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entity T
	if err := pgxscan.Get(ctx, r.Querier(ctx), &entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.tableName, code)
		}
		return nil, fmt.Errorf("get %s by code: %w", r.tableName, err)
	}

	return &entity, nil
}

// Exists reports whether a non-deleted entity with the id exists.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql := fmt.Sprintf(
		"SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND deletion_mark = false)",
		r.tableName,
	)

	var exists bool
	row := r.Querier(ctx).QueryRow(ctx, sql, entityID)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return exists, nil
}

// List returns entities matching the filter, with a total count.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, f domain.ListFilter) (*domain.ListResult[T], error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
	countQ := r.Builder().
		Select("COUNT(*)").
		From(r.tableName)

	apply := func(b squirrel.SelectBuilder) squirrel.SelectBuilder {
		if !f.IncludeDeleted {
			b = b.Where(squirrel.Eq{"deletion_mark": false})
		}
		if len(f.IDs) > 0 {
			b = b.Where(squirrel.Eq{"id": f.IDs})
		}
		if f.Search != "" {
			pattern := "%" + strings.TrimSpace(f.Search) + "%"
			b = b.Where(squirrel.Or{
				squirrel.ILike{"name": pattern},
				squirrel.ILike{"code": pattern},
			})
		}
		return b
	}
	q = apply(q)
	countQ = apply(countQ)

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "name"
	}
	q = q.OrderBy(orderBy)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	var total int64
	row := r.Querier(ctx).QueryRow(ctx, countSQL, countArgs...)
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	return &domain.ListResult[T]{
		Items:      items,
		TotalCount: total,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}, nil
}
