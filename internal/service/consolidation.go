package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the consolidation service.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPending      = errors.New("order is not pending")
	ErrOrderNotConsolidated = errors.New("order is not consolidated")
	ErrBatchNotFound        = errors.New("consolidated order not found")
	ErrBatchNotPending      = errors.New("consolidated order is not pending")
	ErrOrderNotInBatch      = errors.New("order does not belong to this consolidated order")
)

// ConsolidationStore defines the DB methods the engine needs.
// Satisfied by *database.Queries bound to a pool or a transaction.
type ConsolidationStore interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CompleteOrders(ctx context.Context, ids []uuid.UUID) error
	ListPendingConsolidatedBetween(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error)
	CreateConsolidatedOrder(ctx context.Context, arg database.CreateConsolidatedOrderParams) (database.ConsolidatedOrder, error)
	GetConsolidatedOrderForUpdate(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error)
	UpdateConsolidatedOrder(ctx context.Context, arg database.UpdateConsolidatedOrderParams) (database.ConsolidatedOrder, error)
	CompleteConsolidatedOrder(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error)
	DeleteConsolidatedOrder(ctx context.Context, id uuid.UUID) error
	DeleteAllOrders(ctx context.Context) error
	DeleteAllConsolidatedOrders(ctx context.Context) error
}

// NewConsolidationStore creates a ConsolidationStore from a DBTX (pool or tx).
type NewConsolidationStore func(db database.DBTX) ConsolidationStore

// ConsolidationService merges paid orders into daily kitchen batches and
// keeps the two collections consistent.
type ConsolidationService struct {
	pool     TxBeginner
	newStore NewConsolidationStore
	loc      *time.Location
	now      func() time.Time
}

// NewConsolidationService creates a new ConsolidationService. The location
// determines where the daily batch boundary falls.
func NewConsolidationService(pool TxBeginner, newStore NewConsolidationStore, loc *time.Location) *ConsolidationService {
	return &ConsolidationService{
		pool:     pool,
		newStore: newStore,
		loc:      loc,
		now:      time.Now,
	}
}

// dayBounds returns the [start, end) interval of the calendar day containing
// now in the given location.
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// MarkPaidResult reports a completed merge.
type MarkPaidResult struct {
	Order   database.Order
	Batch   database.ConsolidatedOrder
	Created bool // true when the merge opened a new batch
}

// MarkOrderAsPaid moves a pending order into today's open kitchen batch,
// creating one when none exists. The order's items, total and utensil counts
// are folded into the batch and the order transitions to consolidated, all in
// one transaction.
func (s *ConsolidationService) MarkOrderAsPaid(ctx context.Context, orderID, adminID uuid.UUID) (*MarkPaidResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusPending {
		return nil, ErrOrderNotPending
	}

	since, until := dayBounds(s.now(), s.loc)
	batches, err := store.ListPendingConsolidatedBetween(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("list pending batches: %w", err)
	}

	var (
		batch   database.ConsolidatedOrder
		created bool
	)
	if len(batches) > 0 {
		// Merge target is the newest pending batch of the day, picked by an
		// explicit CreatedAt comparison instead of the result ordering.
		target := batches[0]
		for _, b := range batches[1:] {
			if b.CreatedAt.After(target.CreatedAt) {
				target = b
			}
		}
		batch, err = store.UpdateConsolidatedOrder(ctx, database.UpdateConsolidatedOrderParams{
			ID:         target.ID,
			OrderIDs:   append(target.OrderIDs, order.ID),
			Items:      MergeItems(target.Items, order.Items),
			TotalPrice: target.TotalPrice.Add(order.TotalPrice),
			Forks:      target.Forks + order.Forks,
			Chopsticks: target.Chopsticks + order.Chopsticks,
		})
		if err != nil {
			return nil, fmt.Errorf("merge into batch: %w", err)
		}
	} else {
		created = true
		batch, err = store.CreateConsolidatedOrder(ctx, database.CreateConsolidatedOrderParams{
			ID:         uuid.New(),
			OrderIDs:   []uuid.UUID{order.ID},
			Items:      MergeItems(nil, order.Items),
			TotalPrice: order.TotalPrice,
			Forks:      order.Forks,
			Chopsticks: order.Chopsticks,
			Status:     enum.ConsolidatedStatusPending,
			AdminID:    adminID,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return nil, fmt.Errorf("create batch: %w", err)
		}
	}

	order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         order.ID,
		Status:     enum.OrderStatusConsolidated,
		FromStatus: enum.OrderStatusPending,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotPending
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &MarkPaidResult{Order: order, Batch: batch, Created: created}, nil
}

// RemoveResult reports a completed removal.
type RemoveResult struct {
	Order   database.Order
	Batch   database.ConsolidatedOrder
	Deleted bool // true when the removal emptied and deleted the batch
}

// RemoveOrderFromConsolidated undoes a merge: the order's items, total and
// utensil counts are subtracted from the batch and the order returns to
// pending. Removing the last order deletes the batch.
func (s *ConsolidationService) RemoveOrderFromConsolidated(ctx context.Context, batchID, orderID uuid.UUID) (*RemoveResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Row locks are taken order first, then batch, the same order
	// MarkOrderAsPaid uses.
	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	batch, err := store.GetConsolidatedOrderForUpdate(ctx, batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	if batch.Status != enum.ConsolidatedStatusPending {
		return nil, ErrBatchNotPending
	}

	remaining := make([]uuid.UUID, 0, len(batch.OrderIDs))
	found := false
	for _, id := range batch.OrderIDs {
		if id == orderID {
			found = true
			continue
		}
		remaining = append(remaining, id)
	}
	if !found {
		return nil, ErrOrderNotInBatch
	}

	result := &RemoveResult{}
	if len(remaining) == 0 {
		if err := store.DeleteConsolidatedOrder(ctx, batch.ID); err != nil {
			return nil, fmt.Errorf("delete emptied batch: %w", err)
		}
		result.Deleted = true
		result.Batch = batch
	} else {
		total := batch.TotalPrice.Sub(order.TotalPrice)
		if total.IsNegative() {
			total = decimal.Zero
		}
		result.Batch, err = store.UpdateConsolidatedOrder(ctx, database.UpdateConsolidatedOrderParams{
			ID:         batch.ID,
			OrderIDs:   remaining,
			Items:      SubtractItems(batch.Items, order.Items),
			TotalPrice: total,
			Forks:      subtractUtensils(batch.Forks, order.Forks),
			Chopsticks: subtractUtensils(batch.Chopsticks, order.Chopsticks),
		})
		if err != nil {
			return nil, fmt.Errorf("update batch: %w", err)
		}
	}

	result.Order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         order.ID,
		Status:     enum.OrderStatusPending,
		FromStatus: enum.OrderStatusConsolidated,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotConsolidated
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return result, nil
}

// CompleteConsolidatedOrder marks a batch and every order in it as completed.
// Completing an already completed batch is a no-op returning the batch as-is.
func (s *ConsolidationService) CompleteConsolidatedOrder(ctx context.Context, batchID uuid.UUID) (database.ConsolidatedOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.ConsolidatedOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	batch, err := store.GetConsolidatedOrderForUpdate(ctx, batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.ConsolidatedOrder{}, ErrBatchNotFound
		}
		return database.ConsolidatedOrder{}, fmt.Errorf("get batch: %w", err)
	}
	if batch.Status == enum.ConsolidatedStatusCompleted {
		return batch, nil
	}

	batch, err = store.CompleteConsolidatedOrder(ctx, batch.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.ConsolidatedOrder{}, ErrBatchNotPending
		}
		return database.ConsolidatedOrder{}, fmt.Errorf("complete batch: %w", err)
	}

	if err := store.CompleteOrders(ctx, batch.OrderIDs); err != nil {
		return database.ConsolidatedOrder{}, fmt.Errorf("complete member orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.ConsolidatedOrder{}, fmt.Errorf("commit tx: %w", err)
	}

	return batch, nil
}

// DeleteAllOrders wipes both collections in one transaction. Maintenance
// action used to reset the storefront between events.
func (s *ConsolidationService) DeleteAllOrders(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if err := store.DeleteAllConsolidatedOrders(ctx); err != nil {
		return fmt.Errorf("delete consolidated orders: %w", err)
	}
	if err := store.DeleteAllOrders(ctx); err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}

	return tx.Commit(ctx)
}
