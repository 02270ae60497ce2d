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

const orderColumns = `id, customer_name, customer_phone, items, total_price, status, forks, chopsticks, user_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o     Order
		items []byte
		total pgtype.Numeric
	)
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &items, &total,
		&o.Status, &o.Forks, &o.Chopsticks, &o.UserID, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode order items: %w", err)
	}
	o.TotalPrice = numericToDecimal(total)
	return o, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CreateOrderParams carries a fully validated order ready for insertion.
type CreateOrderParams struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerPhone string
	Items         []LineItem
	TotalPrice    decimal.Decimal
	Status        string
	Forks         int32
	Chopsticks    int32
	UserID        pgtype.UUID
	CreatedAt     time.Time
}

// CreateOrder inserts a new order and returns the stored row.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	items, err := json.Marshal(arg.Items)
	if err != nil {
		return Order{}, fmt.Errorf("encode order items: %w", err)
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (id, customer_name, customer_phone, items, total_price, status, forks, chopsticks, user_id, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		arg.ID, arg.CustomerName, arg.CustomerPhone, items,
		decimalToNumeric(arg.TotalPrice), arg.Status, arg.Forks, arg.Chopsticks,
		arg.UserID, arg.CreatedAt)
	return scanOrder(row)
}

// GetOrder fetches a single order by id.
func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetOrderForUpdate fetches an order and locks its row for the duration of
// the surrounding transaction, serializing concurrent engine operations on
// the same order.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR NO KEY UPDATE`, id)
	return scanOrder(row)
}

// ListOrders returns every order, newest first.
func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrdersBetween returns orders created in [since, until), newest first.
func (q *Queries) ListOrdersBetween(ctx context.Context, since, until time.Time) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`, since, until)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrdersByUser returns one customer's orders, newest first.
func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrdersByIDs returns the orders with the given ids, in creation order.
func (q *Queries) ListOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE id = ANY($1)
		ORDER BY created_at`, ids)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// UpdateOrderStatusParams is a conditional status transition: the update only
// applies while the order is still in FromStatus.
type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	FromStatus string
}

// UpdateOrderStatus transitions an order's status. Returns pgx.ErrNoRows when
// the order is missing or no longer in FromStatus, which callers treat as a
// concurrency conflict.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.FromStatus)
	return scanOrder(row)
}

// CompleteOrders transitions every listed order from consolidated to
// completed. Orders already completed are left alone, keeping batch
// completion idempotent.
func (q *Queries) CompleteOrders(ctx context.Context, ids []uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE orders SET status = 'completed'
		WHERE id = ANY($1) AND status = 'consolidated'`, ids)
	return err
}

// DeleteAllOrders removes every order. Maintenance action only.
func (q *Queries) DeleteAllOrders(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `DELETE FROM orders`)
	return err
}
