package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const consolidatedColumns = `id, order_ids, items, total_price, forks, chopsticks, status, admin_id, created_at`

func scanConsolidated(row rowScanner) (ConsolidatedOrder, error) {
	var (
		c     ConsolidatedOrder
		items []byte
		total pgtype.Numeric
	)
	err := row.Scan(&c.ID, &c.OrderIDs, &items, &total, &c.Forks, &c.Chopsticks,
		&c.Status, &c.AdminID, &c.CreatedAt)
	if err != nil {
		return ConsolidatedOrder{}, err
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return ConsolidatedOrder{}, fmt.Errorf("decode consolidated items: %w", err)
	}
	c.TotalPrice = numericToDecimal(total)
	return c, nil
}

func collectConsolidated(rows pgx.Rows) ([]ConsolidatedOrder, error) {
	defer rows.Close()
	var batches []ConsolidatedOrder
	for rows.Next() {
		c, err := scanConsolidated(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, c)
	}
	return batches, rows.Err()
}

// CreateConsolidatedOrderParams seeds a new kitchen batch from a single order.
type CreateConsolidatedOrderParams struct {
	ID         uuid.UUID
	OrderIDs   []uuid.UUID
	Items      ConsolidatedItems
	TotalPrice decimal.Decimal
	Forks      int32
	Chopsticks int32
	Status     string
	AdminID    uuid.UUID
	CreatedAt  time.Time
}

// CreateConsolidatedOrder inserts a new batch and returns the stored row.
func (q *Queries) CreateConsolidatedOrder(ctx context.Context, arg CreateConsolidatedOrderParams) (ConsolidatedOrder, error) {
	items, err := json.Marshal(arg.Items)
	if err != nil {
		return ConsolidatedOrder{}, fmt.Errorf("encode consolidated items: %w", err)
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO consolidated_orders (id, order_ids, items, total_price, forks, chopsticks, status, admin_id, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8, $9)
		RETURNING `+consolidatedColumns,
		arg.ID, arg.OrderIDs, items, decimalToNumeric(arg.TotalPrice),
		arg.Forks, arg.Chopsticks, arg.Status, arg.AdminID, arg.CreatedAt)
	return scanConsolidated(row)
}

// GetConsolidatedOrder fetches a single batch by id.
func (q *Queries) GetConsolidatedOrder(ctx context.Context, id uuid.UUID) (ConsolidatedOrder, error) {
	row := q.db.QueryRow(ctx, `SELECT `+consolidatedColumns+` FROM consolidated_orders WHERE id = $1`, id)
	return scanConsolidated(row)
}

// GetConsolidatedOrderForUpdate locks a batch row for the surrounding
// transaction so concurrent merges and removals serialize on it.
func (q *Queries) GetConsolidatedOrderForUpdate(ctx context.Context, id uuid.UUID) (ConsolidatedOrder, error) {
	row := q.db.QueryRow(ctx, `SELECT `+consolidatedColumns+` FROM consolidated_orders WHERE id = $1 FOR NO KEY UPDATE`, id)
	return scanConsolidated(row)
}

// ListConsolidatedOrders returns every batch, newest first.
func (q *Queries) ListConsolidatedOrders(ctx context.Context) ([]ConsolidatedOrder, error) {
	rows, err := q.db.Query(ctx, `SELECT `+consolidatedColumns+` FROM consolidated_orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectConsolidated(rows)
}

// ListConsolidatedOrdersBetween returns batches created in [since, until),
// newest first.
func (q *Queries) ListConsolidatedOrdersBetween(ctx context.Context, since, until time.Time) ([]ConsolidatedOrder, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+consolidatedColumns+` FROM consolidated_orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`, since, until)
	if err != nil {
		return nil, err
	}
	return collectConsolidated(rows)
}

// ListPendingConsolidatedBetween returns pending batches created in
// [since, until), newest first, locking the rows it returns. The first result
// is the merge target for a payment marked in that window.
func (q *Queries) ListPendingConsolidatedBetween(ctx context.Context, since, until time.Time) ([]ConsolidatedOrder, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+consolidatedColumns+` FROM consolidated_orders
		WHERE status = 'pending' AND created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		FOR NO KEY UPDATE`, since, until)
	if err != nil {
		return nil, err
	}
	return collectConsolidated(rows)
}

// UpdateConsolidatedOrderParams rewrites a batch's aggregate state after a
// merge or removal.
type UpdateConsolidatedOrderParams struct {
	ID         uuid.UUID
	OrderIDs   []uuid.UUID
	Items      ConsolidatedItems
	TotalPrice decimal.Decimal
	Forks      int32
	Chopsticks int32
}

// UpdateConsolidatedOrder replaces the batch's order list, item aggregate and
// totals, returning the stored row.
func (q *Queries) UpdateConsolidatedOrder(ctx context.Context, arg UpdateConsolidatedOrderParams) (ConsolidatedOrder, error) {
	items, err := json.Marshal(arg.Items)
	if err != nil {
		return ConsolidatedOrder{}, fmt.Errorf("encode consolidated items: %w", err)
	}
	row := q.db.QueryRow(ctx, `
		UPDATE consolidated_orders
		SET order_ids = $2, items = $3::jsonb, total_price = $4, forks = $5, chopsticks = $6
		WHERE id = $1
		RETURNING `+consolidatedColumns,
		arg.ID, arg.OrderIDs, items, decimalToNumeric(arg.TotalPrice), arg.Forks, arg.Chopsticks)
	return scanConsolidated(row)
}

// CompleteConsolidatedOrder transitions a batch from pending to completed.
// Returns pgx.ErrNoRows when the batch is missing or already completed.
func (q *Queries) CompleteConsolidatedOrder(ctx context.Context, id uuid.UUID) (ConsolidatedOrder, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE consolidated_orders SET status = 'completed'
		WHERE id = $1 AND status = 'pending'
		RETURNING `+consolidatedColumns, id)
	return scanConsolidated(row)
}

// DeleteConsolidatedOrder removes an emptied batch.
func (q *Queries) DeleteConsolidatedOrder(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM consolidated_orders WHERE id = $1`, id)
	return err
}

// DeleteAllConsolidatedOrders removes every batch. Maintenance action only.
func (q *Queries) DeleteAllConsolidatedOrders(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `DELETE FROM consolidated_orders`)
	return err
}
