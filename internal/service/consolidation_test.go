package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/enum"
	"github.com/shopspring/decimal"
)

// mockConsolidationStore implements ConsolidationStore with configurable behavior.
type mockConsolidationStore struct {
	getOrderForUpdateFn             func(ctx context.Context, id uuid.UUID) (database.Order, error)
	updateOrderStatusFn             func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	completeOrdersFn                func(ctx context.Context, ids []uuid.UUID) error
	listPendingConsolidatedFn       func(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error)
	createConsolidatedOrderFn       func(ctx context.Context, arg database.CreateConsolidatedOrderParams) (database.ConsolidatedOrder, error)
	getConsolidatedOrderForUpdateFn func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error)
	updateConsolidatedOrderFn       func(ctx context.Context, arg database.UpdateConsolidatedOrderParams) (database.ConsolidatedOrder, error)
	completeConsolidatedOrderFn     func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error)
	deleteConsolidatedOrderFn       func(ctx context.Context, id uuid.UUID) error
	deleteAllOrdersFn               func(ctx context.Context) error
	deleteAllConsolidatedOrdersFn   func(ctx context.Context) error
}

func (m *mockConsolidationStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.getOrderForUpdateFn(ctx, id)
}
func (m *mockConsolidationStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return m.updateOrderStatusFn(ctx, arg)
}
func (m *mockConsolidationStore) CompleteOrders(ctx context.Context, ids []uuid.UUID) error {
	return m.completeOrdersFn(ctx, ids)
}
func (m *mockConsolidationStore) ListPendingConsolidatedBetween(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error) {
	return m.listPendingConsolidatedFn(ctx, since, until)
}
func (m *mockConsolidationStore) CreateConsolidatedOrder(ctx context.Context, arg database.CreateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
	return m.createConsolidatedOrderFn(ctx, arg)
}
func (m *mockConsolidationStore) GetConsolidatedOrderForUpdate(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
	return m.getConsolidatedOrderForUpdateFn(ctx, id)
}
func (m *mockConsolidationStore) UpdateConsolidatedOrder(ctx context.Context, arg database.UpdateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
	return m.updateConsolidatedOrderFn(ctx, arg)
}
func (m *mockConsolidationStore) CompleteConsolidatedOrder(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
	return m.completeConsolidatedOrderFn(ctx, id)
}
func (m *mockConsolidationStore) DeleteConsolidatedOrder(ctx context.Context, id uuid.UUID) error {
	return m.deleteConsolidatedOrderFn(ctx, id)
}
func (m *mockConsolidationStore) DeleteAllOrders(ctx context.Context) error {
	return m.deleteAllOrdersFn(ctx)
}
func (m *mockConsolidationStore) DeleteAllConsolidatedOrders(ctx context.Context) error {
	return m.deleteAllConsolidatedOrdersFn(ctx)
}

func newTestConsolidationService(store *mockConsolidationStore) (*ConsolidationService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) ConsolidationStore { return store }
	svc := NewConsolidationService(pool, newStore, time.UTC)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC)
	}
	return svc, tx
}

func pendingOrder(total string, forks, chopsticks int32, items ...database.LineItem) database.Order {
	return database.Order{
		ID:           uuid.New(),
		CustomerName: "Mario",
		Items:        items,
		TotalPrice:   decimal.RequireFromString(total),
		Status:       enum.OrderStatusPending,
		Forks:        forks,
		Chopsticks:   chopsticks,
		CreatedAt:    time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

// =====================
// MarkOrderAsPaid
// =====================

func TestMarkOrderAsPaid_CreatesFirstBatchOfDay(t *testing.T) {
	order := pendingOrder("9.00", 2, 0,
		lineItem("pri-1", "Riso bianco", "2.50", 2),
		lineItem("ant-1", "Involtino Primavera", "2.00", 2),
	)
	adminID := uuid.New()

	var captured database.CreateConsolidatedOrderParams
	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		listPendingConsolidatedFn: func(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error) {
			return nil, nil
		},
		createConsolidatedOrderFn: func(ctx context.Context, arg database.CreateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
			captured = arg
			return database.ConsolidatedOrder{
				ID: arg.ID, OrderIDs: arg.OrderIDs, Items: arg.Items,
				TotalPrice: arg.TotalPrice, Forks: arg.Forks, Chopsticks: arg.Chopsticks,
				Status: arg.Status, AdminID: arg.AdminID, CreatedAt: arg.CreatedAt,
			}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			o := order
			o.Status = arg.Status
			return o, nil
		},
	}

	svc, tx := newTestConsolidationService(store)
	result, err := svc.MarkOrderAsPaid(context.Background(), order.ID, adminID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Created {
		t.Error("expected a new batch to be created")
	}
	if len(captured.OrderIDs) != 1 || captured.OrderIDs[0] != order.ID {
		t.Errorf("batch order ids: got %v, want [%v]", captured.OrderIDs, order.ID)
	}
	if got := captured.TotalPrice.StringFixed(2); got != "9.00" {
		t.Errorf("batch total: got %v, want 9.00", got)
	}
	if captured.Forks != 2 || captured.Chopsticks != 0 {
		t.Errorf("batch utensils: got %d/%d, want 2/0", captured.Forks, captured.Chopsticks)
	}
	if captured.Items["pri-1"].Quantity != 2 {
		t.Errorf("batch items: got %+v", captured.Items)
	}
	if captured.AdminID != adminID {
		t.Errorf("admin id: got %v, want %v", captured.AdminID, adminID)
	}
	if result.Order.Status != enum.OrderStatusConsolidated {
		t.Errorf("order status: got %v, want consolidated", result.Order.Status)
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}
}

func TestMarkOrderAsPaid_MergesIntoNewestPendingBatch(t *testing.T) {
	order := pendingOrder("6.50", 1, 1,
		lineItem("pri-1", "Riso bianco", "2.50", 1),
		lineItem("ant-2", "Ravioli al vapore", "4.00", 1),
	)
	newest := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: []uuid.UUID{uuid.New()},
		Items: database.ConsolidatedItems{
			"pri-1": {Name: "Riso bianco", Quantity: 3, Price: decimal.RequireFromString("2.50")},
		},
		TotalPrice: decimal.RequireFromString("7.50"),
		Forks:      2,
		Chopsticks: 0,
		Status:     enum.ConsolidatedStatusPending,
		CreatedAt:  time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC),
	}
	older := database.ConsolidatedOrder{
		ID:        uuid.New(),
		Status:    enum.ConsolidatedStatusPending,
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}

	var captured database.UpdateConsolidatedOrderParams
	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		listPendingConsolidatedFn: func(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error) {
			return []database.ConsolidatedOrder{newest, older}, nil
		},
		updateConsolidatedOrderFn: func(ctx context.Context, arg database.UpdateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
			captured = arg
			return database.ConsolidatedOrder{
				ID: arg.ID, OrderIDs: arg.OrderIDs, Items: arg.Items,
				TotalPrice: arg.TotalPrice, Forks: arg.Forks, Chopsticks: arg.Chopsticks,
				Status: enum.ConsolidatedStatusPending,
			}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			o := order
			o.Status = arg.Status
			return o, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	result, err := svc.MarkOrderAsPaid(context.Background(), order.ID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Created {
		t.Error("expected merge into existing batch, not creation")
	}
	if captured.ID != newest.ID {
		t.Errorf("merge target: got %v, want newest batch %v", captured.ID, newest.ID)
	}
	if len(captured.OrderIDs) != 2 || captured.OrderIDs[1] != order.ID {
		t.Errorf("order ids after merge: got %v", captured.OrderIDs)
	}
	if captured.Items["pri-1"].Quantity != 4 {
		t.Errorf("merged quantity: got %d, want 4", captured.Items["pri-1"].Quantity)
	}
	if captured.Items["ant-2"].Quantity != 1 {
		t.Errorf("new entry quantity: got %d, want 1", captured.Items["ant-2"].Quantity)
	}
	if got := captured.TotalPrice.StringFixed(2); got != "14.00" {
		t.Errorf("merged total: got %v, want 14.00", got)
	}
	if captured.Forks != 3 || captured.Chopsticks != 1 {
		t.Errorf("merged utensils: got %d/%d, want 3/1", captured.Forks, captured.Chopsticks)
	}
}

func TestMarkOrderAsPaid_PicksNewestBatchRegardlessOfListOrder(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	older := database.ConsolidatedOrder{
		ID:        uuid.New(),
		Status:    enum.ConsolidatedStatusPending,
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
	newest := database.ConsolidatedOrder{
		ID:        uuid.New(),
		Status:    enum.ConsolidatedStatusPending,
		CreatedAt: time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC),
	}

	var captured database.UpdateConsolidatedOrderParams
	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		listPendingConsolidatedFn: func(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error) {
			// Oldest first, the opposite of what the query promises.
			return []database.ConsolidatedOrder{older, newest}, nil
		},
		updateConsolidatedOrderFn: func(ctx context.Context, arg database.UpdateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
			captured = arg
			return database.ConsolidatedOrder{ID: arg.ID}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			return order, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	if _, err := svc.MarkOrderAsPaid(context.Background(), order.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.ID != newest.ID {
		t.Errorf("merge target: got %v, want newest batch %v", captured.ID, newest.ID)
	}
}

func TestMarkOrderAsPaid_OrderNotFound(t *testing.T) {
	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}

	svc, _ := newTestConsolidationService(store)
	_, err := svc.MarkOrderAsPaid(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestMarkOrderAsPaid_OrderAlreadyConsolidated(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	order.Status = enum.OrderStatusConsolidated

	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
	}

	svc, tx := newTestConsolidationService(store)
	_, err := svc.MarkOrderAsPaid(context.Background(), order.ID, uuid.New())
	if !errors.Is(err, ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not be committed")
	}
}

func TestMarkOrderAsPaid_StatusRace(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))

	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		listPendingConsolidatedFn: func(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error) {
			return nil, nil
		},
		createConsolidatedOrderFn: func(ctx context.Context, arg database.CreateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
			return database.ConsolidatedOrder{ID: arg.ID}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			// Another transaction got there first.
			return database.Order{}, pgx.ErrNoRows
		},
	}

	svc, tx := newTestConsolidationService(store)
	_, err := svc.MarkOrderAsPaid(context.Background(), order.ID, uuid.New())
	if !errors.Is(err, ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not be committed on conflict")
	}
}

func TestMarkOrderAsPaid_ScopesBatchLookupToToday(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))

	var gotSince, gotUntil time.Time
	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		listPendingConsolidatedFn: func(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error) {
			gotSince, gotUntil = since, until
			return nil, nil
		},
		createConsolidatedOrderFn: func(ctx context.Context, arg database.CreateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
			return database.ConsolidatedOrder{ID: arg.ID}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			return order, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	if _, err := svc.MarkOrderAsPaid(context.Background(), order.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSince := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	wantUntil := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if !gotSince.Equal(wantSince) || !gotUntil.Equal(wantUntil) {
		t.Errorf("day bounds: got [%v, %v), want [%v, %v)", gotSince, gotUntil, wantSince, wantUntil)
	}
}

// =====================
// RemoveOrderFromConsolidated
// =====================

func TestRemoveOrder_SubtractsFromBatch(t *testing.T) {
	order := pendingOrder("6.50", 1, 0,
		lineItem("pri-1", "Riso bianco", "2.50", 1),
		lineItem("ant-2", "Ravioli al vapore", "4.00", 1),
	)
	order.Status = enum.OrderStatusConsolidated
	other := uuid.New()
	batch := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: []uuid.UUID{other, order.ID},
		Items: database.ConsolidatedItems{
			"pri-1": {Name: "Riso bianco", Quantity: 3, Price: decimal.RequireFromString("2.50")},
			"ant-2": {Name: "Ravioli al vapore", Quantity: 1, Price: decimal.RequireFromString("4.00")},
		},
		TotalPrice: decimal.RequireFromString("14.00"),
		Forks:      2,
		Chopsticks: 1,
		Status:     enum.ConsolidatedStatusPending,
	}

	var captured database.UpdateConsolidatedOrderParams
	store := &mockConsolidationStore{
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return batch, nil
		},
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		updateConsolidatedOrderFn: func(ctx context.Context, arg database.UpdateConsolidatedOrderParams) (database.ConsolidatedOrder, error) {
			captured = arg
			return database.ConsolidatedOrder{ID: arg.ID, OrderIDs: arg.OrderIDs, Items: arg.Items, TotalPrice: arg.TotalPrice}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			o := order
			o.Status = arg.Status
			return o, nil
		},
	}

	svc, tx := newTestConsolidationService(store)
	result, err := svc.RemoveOrderFromConsolidated(context.Background(), batch.ID, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Deleted {
		t.Error("batch should survive with one order left")
	}
	if len(captured.OrderIDs) != 1 || captured.OrderIDs[0] != other {
		t.Errorf("remaining order ids: got %v, want [%v]", captured.OrderIDs, other)
	}
	if captured.Items["pri-1"].Quantity != 2 {
		t.Errorf("remaining quantity: got %d, want 2", captured.Items["pri-1"].Quantity)
	}
	if _, ok := captured.Items["ant-2"]; ok {
		t.Error("emptied entry should be dropped")
	}
	if got := captured.TotalPrice.StringFixed(2); got != "7.50" {
		t.Errorf("remaining total: got %v, want 7.50", got)
	}
	if captured.Forks != 1 || captured.Chopsticks != 1 {
		t.Errorf("remaining utensils: got %d/%d, want 1/1", captured.Forks, captured.Chopsticks)
	}
	if result.Order.Status != enum.OrderStatusPending {
		t.Errorf("order status: got %v, want pending", result.Order.Status)
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}
}

func TestRemoveOrder_LastOrderDeletesBatch(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	order.Status = enum.OrderStatusConsolidated
	batch := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: []uuid.UUID{order.ID},
		Items: database.ConsolidatedItems{
			"pri-1": {Name: "Riso bianco", Quantity: 1, Price: decimal.RequireFromString("2.50")},
		},
		TotalPrice: decimal.RequireFromString("2.50"),
		Status:     enum.ConsolidatedStatusPending,
	}

	deleted := false
	store := &mockConsolidationStore{
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return batch, nil
		},
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		deleteConsolidatedOrderFn: func(ctx context.Context, id uuid.UUID) error {
			if id != batch.ID {
				t.Errorf("deleting wrong batch: %v", id)
			}
			deleted = true
			return nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			o := order
			o.Status = arg.Status
			return o, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	result, err := svc.RemoveOrderFromConsolidated(context.Background(), batch.ID, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !deleted {
		t.Error("expected emptied batch to be deleted")
	}
	if !result.Deleted {
		t.Error("result should report deletion")
	}
	if result.Order.Status != enum.OrderStatusPending {
		t.Errorf("order status: got %v, want pending", result.Order.Status)
	}
}

func TestRemoveOrder_NotInBatch(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	order.Status = enum.OrderStatusConsolidated
	batch := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: []uuid.UUID{uuid.New()},
		Status:   enum.ConsolidatedStatusPending,
	}

	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return batch, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	_, err := svc.RemoveOrderFromConsolidated(context.Background(), batch.ID, order.ID)
	if !errors.Is(err, ErrOrderNotInBatch) {
		t.Fatalf("expected ErrOrderNotInBatch, got: %v", err)
	}
}

func TestRemoveOrder_CompletedBatchRejected(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	order.Status = enum.OrderStatusConsolidated
	batch := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: []uuid.UUID{order.ID},
		Status:   enum.ConsolidatedStatusCompleted,
	}

	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return batch, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	_, err := svc.RemoveOrderFromConsolidated(context.Background(), batch.ID, order.ID)
	if !errors.Is(err, ErrBatchNotPending) {
		t.Fatalf("expected ErrBatchNotPending, got: %v", err)
	}
}

func TestRemoveOrder_BatchNotFound(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	order.Status = enum.OrderStatusConsolidated

	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return order, nil
		},
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return database.ConsolidatedOrder{}, pgx.ErrNoRows
		},
	}

	svc, _ := newTestConsolidationService(store)
	_, err := svc.RemoveOrderFromConsolidated(context.Background(), uuid.New(), order.ID)
	if !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got: %v", err)
	}
}

func TestRemoveOrder_LocksOrderBeforeBatch(t *testing.T) {
	order := pendingOrder("2.50", 0, 0, lineItem("pri-1", "Riso bianco", "2.50", 1))
	order.Status = enum.OrderStatusConsolidated
	batch := database.ConsolidatedOrder{
		ID:         uuid.New(),
		OrderIDs:   []uuid.UUID{order.ID},
		TotalPrice: decimal.RequireFromString("2.50"),
		Status:     enum.ConsolidatedStatusPending,
	}

	var locks []string
	store := &mockConsolidationStore{
		getOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			locks = append(locks, "order")
			return order, nil
		},
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			locks = append(locks, "batch")
			return batch, nil
		},
		deleteConsolidatedOrderFn: func(ctx context.Context, id uuid.UUID) error {
			return nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			return order, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	if _, err := svc.RemoveOrderFromConsolidated(context.Background(), batch.ID, order.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same acquisition order as MarkOrderAsPaid, so two admins working the
	// same batch cannot deadlock each other.
	if len(locks) != 2 || locks[0] != "order" || locks[1] != "batch" {
		t.Errorf("lock order: got %v, want [order batch]", locks)
	}
}

// =====================
// CompleteConsolidatedOrder
// =====================

func TestCompleteBatch_CompletesMemberOrders(t *testing.T) {
	members := []uuid.UUID{uuid.New(), uuid.New()}
	batch := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: members,
		Status:   enum.ConsolidatedStatusPending,
	}

	var completedIDs []uuid.UUID
	store := &mockConsolidationStore{
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return batch, nil
		},
		completeConsolidatedOrderFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			b := batch
			b.Status = enum.ConsolidatedStatusCompleted
			return b, nil
		},
		completeOrdersFn: func(ctx context.Context, ids []uuid.UUID) error {
			completedIDs = ids
			return nil
		},
	}

	svc, tx := newTestConsolidationService(store)
	got, err := svc.CompleteConsolidatedOrder(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != enum.ConsolidatedStatusCompleted {
		t.Errorf("batch status: got %v, want completed", got.Status)
	}
	if len(completedIDs) != 2 {
		t.Errorf("member orders completed: got %v, want %v", completedIDs, members)
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}
}

func TestCompleteBatch_AlreadyCompletedIsNoOp(t *testing.T) {
	batch := database.ConsolidatedOrder{
		ID:       uuid.New(),
		OrderIDs: []uuid.UUID{uuid.New()},
		Status:   enum.ConsolidatedStatusCompleted,
	}

	store := &mockConsolidationStore{
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return batch, nil
		},
		completeConsolidatedOrderFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			t.Fatal("should not re-complete an already completed batch")
			return database.ConsolidatedOrder{}, nil
		},
	}

	svc, _ := newTestConsolidationService(store)
	got, err := svc.CompleteConsolidatedOrder(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enum.ConsolidatedStatusCompleted {
		t.Errorf("batch status: got %v, want completed", got.Status)
	}
}

func TestCompleteBatch_NotFound(t *testing.T) {
	store := &mockConsolidationStore{
		getConsolidatedOrderForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.ConsolidatedOrder, error) {
			return database.ConsolidatedOrder{}, pgx.ErrNoRows
		},
	}

	svc, _ := newTestConsolidationService(store)
	_, err := svc.CompleteConsolidatedOrder(context.Background(), uuid.New())
	if !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got: %v", err)
	}
}

// =====================
// DeleteAllOrders
// =====================

func TestDeleteAllOrders_WipesBothCollections(t *testing.T) {
	var calls []string
	store := &mockConsolidationStore{
		deleteAllConsolidatedOrdersFn: func(ctx context.Context) error {
			calls = append(calls, "consolidated")
			return nil
		},
		deleteAllOrdersFn: func(ctx context.Context) error {
			calls = append(calls, "orders")
			return nil
		},
	}

	svc, tx := newTestConsolidationService(store)
	if err := svc.DeleteAllOrders(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 2 || calls[0] != "consolidated" || calls[1] != "orders" {
		t.Errorf("deletion order: got %v, want [consolidated orders]", calls)
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}
}

// =====================
// dayBounds
// =====================

func TestDayBounds_RespectsLocation(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 23:30 UTC on the 27th is already the 28th in Rome (CEST, UTC+2).
	now := time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC)
	since, until := dayBounds(now, rome)

	wantSince := time.Date(2026, 8, 28, 0, 0, 0, 0, rome)
	if !since.Equal(wantSince) {
		t.Errorf("since: got %v, want %v", since, wantSince)
	}
	if !until.Equal(wantSince.AddDate(0, 0, 1)) {
		t.Errorf("until: got %v, want %v", until, wantSince.AddDate(0, 0, 1))
	}
}
