package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/handler"
)

type mockProfileStore struct {
	users map[uuid.UUID]database.UserProfile
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{users: make(map[uuid.UUID]database.UserProfile)}
}

func (m *mockProfileStore) GetUser(_ context.Context, id uuid.UUID) (database.UserProfile, error) {
	u, ok := m.users[id]
	if !ok {
		return database.UserProfile{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockProfileStore) UpdateUserProfile(_ context.Context, arg database.UpdateUserProfileParams) (database.UserProfile, error) {
	u, ok := m.users[arg.ID]
	if !ok {
		return database.UserProfile{}, pgx.ErrNoRows
	}
	u.FirstName = arg.FirstName
	u.LastName = arg.LastName
	u.PreferredCutlery = arg.PreferredCutlery
	m.users[u.ID] = u
	return u, nil
}

func setupProfileRouter(store *mockProfileStore, userID uuid.UUID) *chi.Mux {
	h := handler.NewProfileHandler(store)
	return authedRouter(customerClaims(userID), func(r chi.Router) {
		h.RegisterRoutes(r)
	})
}

func TestProfileGet_Valid(t *testing.T) {
	userID := uuid.New()
	store := newMockProfileStore()
	store.users[userID] = database.UserProfile{
		ID: userID, Email: "mario@example.com", FirstName: "Mario",
		PreferredCutlery: "chopsticks",
	}
	router := setupProfileRouter(store, userID)

	rr := doRequest(t, router, "GET", "/profile", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["first_name"] != "Mario" {
		t.Errorf("first_name: got %v", resp["first_name"])
	}
	if resp["preferred_cutlery"] != "chopsticks" {
		t.Errorf("preferred_cutlery: got %v", resp["preferred_cutlery"])
	}
}

func TestProfileGet_NotFound(t *testing.T) {
	router := setupProfileRouter(newMockProfileStore(), uuid.New())

	rr := doRequest(t, router, "GET", "/profile", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestProfileUpdate_Valid(t *testing.T) {
	userID := uuid.New()
	store := newMockProfileStore()
	store.users[userID] = database.UserProfile{
		ID: userID, Email: "mario@example.com", FirstName: "Mario",
		PreferredCutlery: "none",
	}
	router := setupProfileRouter(store, userID)

	rr := doRequest(t, router, "PUT", "/profile", map[string]interface{}{
		"first_name":        "Maria",
		"last_name":         "Bianchi",
		"preferred_cutlery": "forks",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["first_name"] != "Maria" {
		t.Errorf("first_name: got %v", resp["first_name"])
	}
	if store.users[userID].PreferredCutlery != "forks" {
		t.Errorf("stored cutlery: got %v", store.users[userID].PreferredCutlery)
	}
}

func TestProfileUpdate_MissingFirstName(t *testing.T) {
	router := setupProfileRouter(newMockProfileStore(), uuid.New())

	rr := doRequest(t, router, "PUT", "/profile", map[string]interface{}{
		"preferred_cutlery": "forks",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProfileUpdate_InvalidCutlery(t *testing.T) {
	router := setupProfileRouter(newMockProfileStore(), uuid.New())

	rr := doRequest(t, router, "PUT", "/profile", map[string]interface{}{
		"first_name":        "Mario",
		"preferred_cutlery": "spoon",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
