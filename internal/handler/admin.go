package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/enum"
	"github.com/ordini-app/api/internal/metrics"
	"github.com/ordini-app/api/internal/middleware"
	"github.com/ordini-app/api/internal/notify"
	"github.com/ordini-app/api/internal/service"
	"github.com/ordini-app/api/internal/ws"
)

// ConsolidationServicer defines the service methods needed by admin handlers.
// Satisfied by *service.ConsolidationService; narrow interface for testability.
type ConsolidationServicer interface {
	MarkOrderAsPaid(ctx context.Context, orderID, adminID uuid.UUID) (*service.MarkPaidResult, error)
	RemoveOrderFromConsolidated(ctx context.Context, batchID, orderID uuid.UUID) (*service.RemoveResult, error)
	CompleteConsolidatedOrder(ctx context.Context, batchID uuid.UUID) (database.ConsolidatedOrder, error)
	DeleteAllOrders(ctx context.Context) error
}

// AdminStore defines the database methods needed by admin read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AdminStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
	ListOrdersBetween(ctx context.Context, since, until time.Time) ([]database.Order, error)
	ListConsolidatedOrders(ctx context.Context) ([]database.ConsolidatedOrder, error)
	ListConsolidatedOrdersBetween(ctx context.Context, since, until time.Time) ([]database.ConsolidatedOrder, error)
	GetSystemSettings(ctx context.Context) (database.SystemSettings, error)
	CreateSystemSettings(ctx context.Context, allowOrdering, allowAdminRegistration bool) (database.SystemSettings, error)
	UpdateSystemSettings(ctx context.Context, arg database.UpdateSystemSettingsParams) (database.SystemSettings, error)
}

// AdminHandler handles the admin console endpoints.
type AdminHandler struct {
	svc       ConsolidationServicer
	store     AdminStore
	hub       *ws.Hub
	publisher *notify.Publisher
	loc       *time.Location

	now func() time.Time
}

// NewAdminHandler creates a new AdminHandler. loc scopes the "today" order
// view to the restaurant's local day.
func NewAdminHandler(svc ConsolidationServicer, store AdminStore, hub *ws.Hub, publisher *notify.Publisher, loc *time.Location) *AdminHandler {
	return &AdminHandler{
		svc:       svc,
		store:     store,
		hub:       hub,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// RegisterRoutes registers admin endpoints on the given Chi router.
// Expected to be mounted behind authentication plus the admin check.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.ListOrders)
	r.Delete("/orders", h.DeleteAllOrders)
	r.Post("/orders/{id}/paid", h.MarkOrderAsPaid)
	r.Get("/consolidated-orders", h.ListConsolidatedOrders)
	r.Post("/consolidated-orders/{id}/complete", h.CompleteConsolidatedOrder)
	r.Delete("/consolidated-orders/{batchID}/orders/{orderID}", h.RemoveOrderFromConsolidated)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
}

// today returns the [startOfDay, nextDay) bounds of the current local day.
func (h *AdminHandler) today() (time.Time, time.Time) {
	now := h.now().In(h.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	return start, start.AddDate(0, 0, 1)
}

// --- Response types ---

type consolidatedResponse struct {
	ID         uuid.UUID                  `json:"id"`
	OrderIDs   []uuid.UUID                `json:"order_ids"`
	Items      database.ConsolidatedItems `json:"items"`
	TotalPrice string                     `json:"total_price"`
	Forks      int32                      `json:"forks"`
	Chopsticks int32                      `json:"chopsticks"`
	Status     string                     `json:"status"`
	AdminID    uuid.UUID                  `json:"admin_id"`
	CreatedAt  time.Time                  `json:"created_at"`
}

func toConsolidatedResponse(c database.ConsolidatedOrder) consolidatedResponse {
	return consolidatedResponse{
		ID:         c.ID,
		OrderIDs:   c.OrderIDs,
		Items:      c.Items,
		TotalPrice: c.TotalPrice.StringFixed(2),
		Forks:      c.Forks,
		Chopsticks: c.Chopsticks,
		Status:     c.Status,
		AdminID:    c.AdminID,
		CreatedAt:  c.CreatedAt,
	}
}

type settingsResponse struct {
	AllowOrdering          bool      `json:"allow_ordering"`
	AllowAdminRegistration bool      `json:"allow_admin_registration"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func toSettingsResponse(s database.SystemSettings) settingsResponse {
	return settingsResponse{
		AllowOrdering:          s.AllowOrdering,
		AllowAdminRegistration: s.AllowAdminRegistration,
		UpdatedAt:              s.UpdatedAt,
	}
}

// --- Handlers ---

// ListOrders returns all orders, restricted to the current local day unless
// scope=all is requested.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []database.Order
		err    error
	)
	if r.URL.Query().Get("scope") == "all" {
		orders, err = h.store.ListOrders(r.Context())
	} else {
		since, until := h.today()
		orders, err = h.store.ListOrdersBetween(r.Context(), since, until)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// ListConsolidatedOrders returns kitchen batches, restricted to the current
// local day unless scope=all is requested.
func (h *AdminHandler) ListConsolidatedOrders(w http.ResponseWriter, r *http.Request) {
	var (
		batches []database.ConsolidatedOrder
		err     error
	)
	if r.URL.Query().Get("scope") == "all" {
		batches, err = h.store.ListConsolidatedOrders(r.Context())
	} else {
		since, until := h.today()
		batches, err = h.store.ListConsolidatedOrdersBetween(r.Context(), since, until)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	out := make([]consolidatedResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toConsolidatedResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkOrderAsPaid confirms payment for an order, folding it into today's
// pending kitchen batch (opening one when none exists).
func (h *AdminHandler) MarkOrderAsPaid(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	result, err := h.svc.MarkOrderAsPaid(r.Context(), orderID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotPending):
			metrics.ConsolidationConflicts.Inc()
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	metrics.OrdersConsolidated.Inc()
	if result.Created {
		metrics.BatchesCreated.Inc()
	}
	h.publisher.Publish(r.Context(), enum.EventOrderConsolidated, toConsolidatedResponse(result.Batch))
	broadcastOrder(h.hub, enum.EventOrderConsolidated, result.Order)
	broadcastBatch(h.hub, enum.EventOrderConsolidated, result.Batch)

	writeJSON(w, http.StatusOK, map[string]any{
		"order": toOrderResponse(result.Order),
		"batch": toConsolidatedResponse(result.Batch),
	})
}

// RemoveOrderFromConsolidated pulls an order back out of its batch, reverting
// it to pending. An emptied batch is deleted.
func (h *AdminHandler) RemoveOrderFromConsolidated(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch id"})
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	result, err := h.svc.RemoveOrderFromConsolidated(r.Context(), batchID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchNotFound), errors.Is(err, service.ErrOrderNotFound),
			errors.Is(err, service.ErrOrderNotInBatch):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrBatchNotPending), errors.Is(err, service.ErrOrderNotConsolidated):
			metrics.ConsolidationConflicts.Inc()
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	metrics.OrdersRemoved.Inc()
	h.publisher.Publish(r.Context(), enum.EventOrderRemoved, toOrderResponse(result.Order))
	broadcastOrder(h.hub, enum.EventOrderRemoved, result.Order)

	resp := map[string]any{
		"order":         toOrderResponse(result.Order),
		"batch_deleted": result.Deleted,
	}
	if !result.Deleted {
		resp["batch"] = toConsolidatedResponse(result.Batch)
		broadcastBatch(h.hub, enum.EventOrderRemoved, result.Batch)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CompleteConsolidatedOrder marks a batch cooked. Safe to repeat.
func (h *AdminHandler) CompleteConsolidatedOrder(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch id"})
		return
	}

	batch, err := h.svc.CompleteConsolidatedOrder(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	metrics.BatchesCompleted.Inc()
	h.publisher.Publish(r.Context(), enum.EventConsolidatedCompleted, toConsolidatedResponse(batch))
	broadcastBatch(h.hub, enum.EventConsolidatedCompleted, batch)

	writeJSON(w, http.StatusOK, toConsolidatedResponse(batch))
}

// DeleteAllOrders wipes both order collections. Used to reset between
// service days.
func (h *AdminHandler) DeleteAllOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAllOrders(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.publisher.Publish(r.Context(), enum.EventOrdersCleared, nil)
	if h.hub != nil {
		h.hub.Broadcast(ws.AdminChannel, ws.Event{Type: enum.EventOrdersCleared})
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSettings returns the storefront toggles, creating defaults on first use.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.loadOrInitSettings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

type updateSettingsRequest struct {
	AllowOrdering          bool `json:"allow_ordering"`
	AllowAdminRegistration bool `json:"allow_admin_registration"`
}

// UpdateSettings updates the storefront toggles.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.loadOrInitSettings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	updated, err := h.store.UpdateSystemSettings(r.Context(), database.UpdateSystemSettingsParams{
		ID:                     current.ID,
		AllowOrdering:          req.AllowOrdering,
		AllowAdminRegistration: req.AllowAdminRegistration,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if current.AllowOrdering && !updated.AllowOrdering {
		h.publisher.Publish(r.Context(), enum.EventOrderingClosed, nil)
		if h.hub != nil {
			h.hub.Broadcast(ws.AdminChannel, ws.Event{Type: enum.EventOrderingClosed})
		}
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(updated))
}

func (h *AdminHandler) loadOrInitSettings(ctx context.Context) (database.SystemSettings, error) {
	settings, err := h.store.GetSystemSettings(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return h.store.CreateSystemSettings(ctx, true, true)
	}
	return settings, err
}

// broadcastBatch pushes a batch event to the admin feed.
func broadcastBatch(hub *ws.Hub, eventType string, batch database.ConsolidatedOrder) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(toConsolidatedResponse(batch))
	if err != nil {
		return
	}
	hub.Broadcast(ws.AdminChannel, ws.Event{Type: eventType, Payload: payload})
}
