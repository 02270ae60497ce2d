package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/enum"
	"github.com/ordini-app/api/internal/metrics"
	"github.com/ordini-app/api/internal/middleware"
	"github.com/ordini-app/api/internal/notify"
	"github.com/ordini-app/api/internal/service"
	"github.com/ordini-app/api/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
}

// OrderHandler handles the customer-facing order endpoints.
type OrderHandler struct {
	svc       OrderServicer
	store     OrderStore
	hub       *ws.Hub
	publisher *notify.Publisher
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub *ws.Hub, publisher *notify.Publisher) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub, publisher: publisher}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside an authenticated subrouter.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.ListMine)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	Items         []createOrderItemRequest `json:"items"`
	Forks         int32                    `json:"forks"`
	Chopsticks    int32                    `json:"chopsticks"`
}

type createOrderItemRequest struct {
	DishID   string `json:"dish_id"`
	Quantity int32  `json:"quantity"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Items         []database.LineItem `json:"items"`
	TotalPrice    string              `json:"total_price"`
	Status        string              `json:"status"`
	Forks         int32               `json:"forks"`
	Chopsticks    int32               `json:"chopsticks"`
	UserID        *uuid.UUID          `json:"user_id"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Items:         o.Items,
		TotalPrice:    o.TotalPrice.StringFixed(2),
		Status:        o.Status,
		Forks:         o.Forks,
		Chopsticks:    o.Chopsticks,
		CreatedAt:     o.CreatedAt,
	}
	if o.UserID.Valid {
		id := uuid.UUID(o.UserID.Bytes)
		resp.UserID = &id
	}
	return resp
}

func toOrderResponses(orders []database.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// --- Handlers ---

// Create places a new order for the authenticated customer.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.CreateOrderItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CreateOrderItemRequest{
			DishID:   it.DishID,
			Quantity: it.Quantity,
		})
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Forks:         req.Forks,
		Chopsticks:    req.Chopsticks,
		UserID:        pgtype.UUID{Bytes: claims.UserID, Valid: true},
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderingClosed):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrMissingCustomerName),
			errors.Is(err, service.ErrEmptyItems),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrDishNotFound),
			errors.Is(err, service.ErrInvalidUtensils):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	metrics.OrdersCreated.Inc()
	h.publisher.Publish(r.Context(), enum.EventOrderCreated, toOrderResponse(order))
	broadcastOrder(h.hub, enum.EventOrderCreated, order)

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// ListMine returns the authenticated customer's orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// broadcastOrder pushes an order event to the admin feed and, when the order
// belongs to a registered customer, to that customer's private feed.
func broadcastOrder(hub *ws.Hub, eventType string, order database.Order) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(toOrderResponse(order))
	if err != nil {
		return
	}
	event := ws.Event{Type: eventType, Payload: payload}
	hub.Broadcast(ws.AdminChannel, event)
	if order.UserID.Valid {
		hub.Broadcast(ws.UserChannel(uuid.UUID(order.UserID.Bytes)), event)
	}
}
