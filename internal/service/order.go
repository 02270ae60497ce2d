package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/enum"
	"github.com/ordini-app/api/internal/menu"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrDishNotFound        = errors.New("dish not found in menu")
	ErrInvalidUtensils     = errors.New("utensil counts must be >= 0")
	ErrMissingCustomerName = errors.New("customer name is required")
	ErrOrderingClosed      = errors.New("ordering is currently closed")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries bound to a pool or a transaction.
type OrderStore interface {
	GetSystemSettings(ctx context.Context) (database.SystemSettings, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for checkout. Item prices are
// never taken from the client; they are re-read from the menu catalog.
type CreateOrderRequest struct {
	CustomerName  string
	CustomerPhone string
	Items         []CreateOrderItemRequest
	Forks         int32
	Chopsticks    int32
	UserID        pgtype.UUID
}

// CreateOrderItemRequest is a single dish in the cart.
type CreateOrderItemRequest struct {
	DishID   string
	Quantity int32
}

// OrderService handles checkout.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, now: time.Now}
}

// CreateOrder validates the cart against the menu, recomputes the total
// server-side and inserts a pending order. Fails when ordering is closed.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error) {
	if req.CustomerName == "" {
		return database.Order{}, ErrMissingCustomerName
	}
	if len(req.Items) == 0 {
		return database.Order{}, ErrEmptyItems
	}
	if req.Forks < 0 || req.Chopsticks < 0 {
		return database.Order{}, ErrInvalidUtensils
	}

	total := decimal.Zero
	items := make([]database.LineItem, 0, len(req.Items))
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return database.Order{}, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		dish, ok := menu.Find(it.DishID)
		if !ok {
			return database.Order{}, fmt.Errorf("item[%d] %q: %w", i, it.DishID, ErrDishNotFound)
		}
		items = append(items, database.LineItem{
			ID:       dish.ID,
			Name:     dish.Name,
			Price:    dish.Price,
			Quantity: it.Quantity,
			Category: dish.Category,
		})
		total = total.Add(dish.Price.Mul(decimal.NewFromInt32(it.Quantity)))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// A missing settings row means the storefront was never configured;
	// it defaults to open, matching the lazy creation in the admin handlers.
	settings, err := store.GetSystemSettings(ctx)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, fmt.Errorf("get settings: %w", err)
	}
	if err == nil && !settings.AllowOrdering {
		return database.Order{}, ErrOrderingClosed
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		TotalPrice:    total,
		Status:        enum.OrderStatusPending,
		Forks:         req.Forks,
		Chopsticks:    req.Chopsticks,
		UserID:        req.UserID,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return order, nil
}
