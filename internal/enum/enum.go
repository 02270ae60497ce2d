package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending      = "pending"
	OrderStatusConsolidated = "consolidated"
	OrderStatusCompleted    = "completed"
)

const (
	ConsolidatedStatusPending   = "pending"
	ConsolidatedStatusCompleted = "completed"
)

// ── Profile preferences (CHECK constrained in DB) ──

const (
	CutleryForks      = "forks"
	CutleryChopsticks = "chopsticks"
	CutleryNone       = "none"
)

// ── Live event types (wire labels, no DB constraint) ──

const (
	EventOrderCreated          = "order.created"
	EventOrderConsolidated     = "order.consolidated"
	EventOrderRemoved          = "order.removed"
	EventConsolidatedCompleted = "consolidated.completed"
	EventOrdersCleared         = "orders.cleared"
	EventOrderingClosed        = "ordering.closed"
)
