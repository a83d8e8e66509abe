// Package order_repo provides the PostgreSQL order store.
package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/domain/orders"
	"dispensary/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "ord_orders"
	orderItemsTable = "ord_order_items"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	orderCols  []string
	itemCols   []string
}

func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		orderCols: postgres.ExtractDBColumns[orders.Order](),
		itemCols:  postgres.ExtractDBColumns[orders.Item](),
	}
}

func (r *OrderRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *OrderRepo) CreateOrder(ctx context.Context, order *orders.Order) error {
	data := postgres.StructToMap(*order)

	filtered := make(map[string]any, len(r.orderCols))
	for _, col := range r.orderCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder.Insert(ordersTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItems bulk inserts items with COPY. One order can expand into many
// batch-level items, so the bulk path matters. Must run inside the
// placement transaction.
func (r *OrderRepo) CreateItems(ctx context.Context, items []orders.Item) error {
	if len(items) == 0 {
		return nil
	}

	columns := []string{
		"id", "order_id", "medicine_id", "batch_id",
		"quantity", "unit_price", "created_at",
	}
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.ID, it.OrderID, it.MedicineID, it.BatchID,
			it.Quantity, it.UnitPrice, it.CreatedAt,
		})
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	if _, err := inserter.CopyFromSlice(ctx, orderItemsTable, columns, rows); err != nil {
		return fmt.Errorf("copy order items: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	q := r.builder.
		Select(r.orderCols...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order orders.Order
	if err := pgxscan.Get(ctx, r.querier(ctx), &order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]orders.Item, error) {
	q := r.builder.
		Select(r.itemCols...).
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []orders.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	return items, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID id.ID) ([]orders.Order, error) {
	q := r.builder.
		Select(r.orderCols...).
		From(ordersTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []orders.Order
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	return out, nil
}
