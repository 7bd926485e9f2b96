package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carewell-ai/care-assistant/internal/dialog"
	"github.com/carewell-ai/care-assistant/internal/identity"
	"github.com/carewell-ai/care-assistant/internal/security"
	"github.com/carewell-ai/care-assistant/internal/transcript"
	"github.com/carewell-ai/care-assistant/internal/users"
	"github.com/carewell-ai/care-assistant/pkg/logging"
)

// SessionTokenHeader carries the caller's opaque session token.
const SessionTokenHeader = "X-Session-Token"

const tempIDPrefix = "temp_"

// Handler exposes the chat HTTP surface: message processing, authentication,
// and transcript history.
type Handler struct {
	dialog     *dialog.Manager
	users      users.Repository
	tokens     *security.TokenRegistry
	transcript *transcript.Store
	logger     *logging.Logger
}

// NewHandler creates a chat handler.
func NewHandler(dm *dialog.Manager, repo users.Repository, tokens *security.TokenRegistry, ts *transcript.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dialog:     dm,
		users:      repo,
		tokens:     tokens,
		transcript: ts,
		logger:     logger,
	}
}

// MessageRequest is the body of POST /api/message.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse is the reply of POST /api/message.
type MessageResponse struct {
	Response string `json:"response"`
}

// AuthenticateRequest is the body of POST /api/authenticate.
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthenticateResponse is the reply of POST /api/authenticate.
type AuthenticateResponse struct {
	SessionToken string `json:"session_token"`
}

// HandleMessage handles POST /api/message. Callers without a valid session
// token converse under a temporary user id, exactly like first-time visitors.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, authenticated := h.resolveUser(r)

	response, err := h.dialog.ProcessMessage(r.Context(), userID, req.Message)
	if err != nil {
		h.logger.Error("failed to process message", "error", err, "user_id", userID)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	h.recordHistory(r.Context(), userID, req.Message, response)

	h.logger.Info("message processed", "user_id", userID, "authenticated", authenticated)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(MessageResponse{Response: response})
}

// HandleAuthenticate handles POST /api/authenticate. It looks the user up by
// email and mints an opaque session token.
func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token := h.tokens.Issue(user.ID)

	h.logger.Info("session issued", "user_id", user.ID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(AuthenticateResponse{SessionToken: token})
}

// HandleHistory handles GET /api/history, returning the caller's transcript.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		userID, ok = h.tokens.Resolve(r.Header.Get(SessionTokenHeader))
	}
	if !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	messages, err := h.transcript.List(r.Context(), userID, 100)
	if err != nil {
		h.logger.Error("failed to load history", "error", err, "user_id", userID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []transcript.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]transcript.Message{"messages": messages})
}

// resolveUser maps the session to a user id, minting a temporary id for
// unauthenticated callers. The router middleware resolves the token header
// up front; the direct lookup covers handlers mounted without it.
func (h *Handler) resolveUser(r *http.Request) (string, bool) {
	if userID, ok := identity.UserIDFromContext(r.Context()); ok {
		return userID, true
	}
	if userID, ok := h.tokens.Resolve(r.Header.Get(SessionTokenHeader)); ok {
		return userID, true
	}
	return tempIDPrefix + uuid.NewString(), false
}

// recordHistory appends the user/bot turn to the stored chat history (when a
// user record exists) and mirrors it to the transcript store.
func (h *Handler) recordHistory(ctx context.Context, userID, message, response string) {
	now := time.Now().UTC()

	if user, err := h.users.Get(ctx, userID); err == nil {
		user.ChatHistory = append(user.ChatHistory,
			users.ChatMessage{ID: uuid.NewString(), Sender: users.SenderUser, Text: message, Timestamp: now},
			users.ChatMessage{ID: uuid.NewString(), Sender: users.SenderBot, Text: response, Timestamp: now},
		)
		if err := h.users.Update(ctx, user); err != nil {
			h.logger.Error("failed to store chat history", "error", err, "user_id", userID)
		}
	}

	if err := h.transcript.Append(ctx, userID, transcript.Message{Role: users.SenderUser, Body: message, Timestamp: now}); err != nil {
		h.logger.Error("failed to append transcript", "error", err, "user_id", userID)
	}
	if err := h.transcript.Append(ctx, userID, transcript.Message{Role: users.SenderBot, Body: response, Timestamp: now}); err != nil {
		h.logger.Error("failed to append transcript", "error", err, "user_id", userID)
	}
}
