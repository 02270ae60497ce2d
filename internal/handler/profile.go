package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/middleware"
)

// ProfileStore defines the database methods needed by profile handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProfileStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (database.UserProfile, error)
	UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.UserProfile, error)
}

// ProfileHandler handles the authenticated account endpoints.
type ProfileHandler struct {
	store ProfileStore
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// RegisterRoutes registers profile endpoints on the given Chi router.
// Expected to be mounted inside an authenticated subrouter.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.Get)
	r.Put("/profile", h.Update)
}

// Get returns the authenticated user's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PreferredCutlery string `json:"preferred_cutlery"`
}

// Update changes the authenticated user's name and cutlery preference.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first name is required"})
		return
	}
	if !validCutlery(req.PreferredCutlery) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cutlery preference"})
		return
	}

	user, err := h.store.UpdateUserProfile(r.Context(), database.UpdateUserProfileParams{
		ID:               claims.UserID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PreferredCutlery: req.PreferredCutlery,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
