package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/service"
)

// StatisticsStore defines the database methods needed by the statistics
// handler. Satisfied by *database.Queries.
type StatisticsStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
}

// StatisticsHandler serves ordering aggregates.
type StatisticsHandler struct {
	store StatisticsStore
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(store StatisticsStore) *StatisticsHandler {
	return &StatisticsHandler{store: store}
}

// RegisterRoutes registers statistics endpoints on the given Chi router.
func (h *StatisticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/statistics", h.Get)
}

// Get returns per-dish totals across all recorded orders.
func (h *StatisticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, service.ComputeStatistics(orders))
}
