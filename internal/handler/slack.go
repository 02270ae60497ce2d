package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/enum"
	"github.com/ordini-app/api/internal/notify"
	"github.com/ordini-app/api/internal/slack"
	"github.com/ordini-app/api/internal/ws"
)

// SlackDirectory resolves Slack user ids via the Slack Web API.
// Satisfied by *slack.Client.
type SlackDirectory interface {
	UserInfo(ctx context.Context, userID string) (slack.User, error)
}

// SlackStore defines the database methods needed by Slack handlers.
// Satisfied by *database.Queries.
type SlackStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.UserProfile, error)
	GetUserBySlackID(ctx context.Context, slackUserID string) (database.UserProfile, error)
	LinkSlackUser(ctx context.Context, id uuid.UUID, slackUserID string) (database.UserProfile, error)
	GetSystemSettings(ctx context.Context) (database.SystemSettings, error)
	UpdateSystemSettings(ctx context.Context, arg database.UpdateSystemSettingsParams) (database.SystemSettings, error)
}

// SlackHandler handles Slack slash commands and deep-link token exchange.
type SlackHandler struct {
	store         SlackStore
	directory     SlackDirectory
	hub           *ws.Hub
	publisher     *notify.Publisher
	signingSecret string
	appURL        string
}

// NewSlackHandler creates a new SlackHandler. appURL is the public frontend
// base used to build deep links.
func NewSlackHandler(store SlackStore, directory SlackDirectory, hub *ws.Hub, publisher *notify.Publisher, signingSecret, appURL string) *SlackHandler {
	return &SlackHandler{
		store:         store,
		directory:     directory,
		hub:           hub,
		publisher:     publisher,
		signingSecret: signingSecret,
		appURL:        appURL,
	}
}

// RegisterRoutes registers Slack endpoints on the given Chi router.
func (h *SlackHandler) RegisterRoutes(r chi.Router) {
	r.Post("/slack/ordina", h.Ordina)
	r.Post("/slack/chiudi-ordinazioni", h.ChiudiOrdinazioni)
	r.Post("/slack/verify-token", h.VerifyToken)
}

// slashCommand is the subset of Slack's form-encoded slash command payload
// the handlers use.
type slashCommand struct {
	UserID   string
	UserName string
}

// readCommand verifies the request signature against the raw body, then
// parses the slash command form. On failure it has already written the
// response and returns false.
func (h *SlackHandler) readCommand(w http.ResponseWriter, r *http.Request) (slashCommand, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return slashCommand{}, false
	}

	err = slack.VerifySignature(h.signingSecret,
		r.Header.Get("X-Slack-Request-Timestamp"),
		r.Header.Get("X-Slack-Signature"), body)
	if err != nil {
		log.Printf("ERROR: slack signature rejected: %v", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid slack signature"})
		return slashCommand{}, false
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
		return slashCommand{}, false
	}
	cmd := slashCommand{
		UserID:   form.Get("user_id"),
		UserName: form.Get("user_name"),
	}
	if cmd.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return slashCommand{}, false
	}
	return cmd, true
}

// slackMessage writes an ephemeral in-channel reply.
func slackMessage(w http.ResponseWriter, text string) {
	writeJSON(w, http.StatusOK, map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
}

// Ordina handles the /ordina slash command: it answers with a signed deep
// link that logs the Slack user into the storefront (or starts registration).
func (h *SlackHandler) Ordina(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.readCommand(w, r)
	if !ok {
		return
	}

	info, err := h.directory.UserInfo(r.Context(), cmd.UserID)
	if err != nil {
		log.Printf("ERROR: slack users.info for %s: %v", cmd.UserID, err)
		slackMessage(w, "Non riesco a leggere il tuo profilo Slack, riprova tra poco.")
		return
	}

	token := slack.GenerateLinkToken(h.signingSecret, cmd.UserID, info.Email)
	link := fmt.Sprintf("%s/ordina?token=%s", h.appURL, url.QueryEscape(token))
	slackMessage(w, fmt.Sprintf("Ciao %s! Ordina qui: %s", info.RealName, link))
}

// ChiudiOrdinazioni handles the /chiudi-ordinazioni slash command: an admin
// linked to a Slack account can close the storefront from Slack.
func (h *SlackHandler) ChiudiOrdinazioni(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.readCommand(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUserBySlackID(r.Context(), cmd.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slackMessage(w, "Il tuo account Slack non è collegato a un profilo.")
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !user.IsAdmin {
		slackMessage(w, "Solo gli amministratori possono chiudere le ordinazioni.")
		return
	}

	settings, err := h.store.GetSystemSettings(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if settings.AllowOrdering {
		_, err = h.store.UpdateSystemSettings(r.Context(), database.UpdateSystemSettingsParams{
			ID:                     settings.ID,
			AllowOrdering:          false,
			AllowAdminRegistration: settings.AllowAdminRegistration,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		h.publisher.Publish(r.Context(), enum.EventOrderingClosed, nil)
		if h.hub != nil {
			h.hub.Broadcast(ws.AdminChannel, ws.Event{Type: enum.EventOrderingClosed})
		}
	}

	slackMessage(w, "Ordinazioni chiuse.")
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

type verifyTokenResponse struct {
	SlackUserID string `json:"slack_user_id"`
	Email       string `json:"email"`
	Registered  bool   `json:"registered"`
}

// VerifyToken validates a deep-link token from the frontend. When the email
// already belongs to an account, the Slack id is linked to it so that later
// slash commands resolve the profile.
func (h *SlackHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	link, err := slack.VerifyLinkToken(h.signingSecret, req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}

	resp := verifyTokenResponse{SlackUserID: link.SlackUserID, Email: link.Email}

	user, err := h.store.GetUserByEmail(r.Context(), link.Email)
	switch {
	case err == nil:
		resp.Registered = true
		if !user.SlackUserID.Valid {
			if _, err := h.store.LinkSlackUser(r.Context(), user.ID, link.SlackUserID); err != nil {
				log.Printf("ERROR: linking slack user %s to %s: %v", link.SlackUserID, user.ID, err)
			}
		}
	case errors.Is(err, pgx.ErrNoRows):
		// Unregistered: frontend routes to sign-up with the email prefilled.
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
