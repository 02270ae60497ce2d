package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordini-app/api/internal/menu"
)

// MenuHandler serves the static catalog.
type MenuHandler struct{}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler() *MenuHandler {
	return &MenuHandler{}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

// Get returns the full catalog grouped by category.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, menu.Categories())
}
