package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell-ai/care-assistant/internal/chat"
	"github.com/carewell-ai/care-assistant/internal/dialog"
	"github.com/carewell-ai/care-assistant/internal/knowledge"
	"github.com/carewell-ai/care-assistant/internal/nlp"
	"github.com/carewell-ai/care-assistant/internal/security"
	"github.com/carewell-ai/care-assistant/internal/transcript"
	"github.com/carewell-ai/care-assistant/internal/users"
	"github.com/carewell-ai/care-assistant/internal/webchat"
	"github.com/carewell-ai/care-assistant/pkg/logging"
)

func newTestRouter(t *testing.T, adminSecret string) (http.Handler, *security.TokenRegistry, users.Repository) {
	t.Helper()

	logger := logging.New("error")
	kb := knowledge.NewStore()
	engine := nlp.NewEngine(kb)
	repo := users.NewInMemoryRepository()
	manager := dialog.NewManager(repo, engine, kb, logger, nil)
	tokens := security.NewTokenRegistry(time.Hour)
	ts := transcript.NewStore(nil, 0)

	r := New(&Config{
		Logger:          logger,
		ChatHandler:     chat.NewHandler(manager, repo, tokens, ts, logger),
		WebChatHandler:  webchat.NewHandler(manager, ts, logger),
		UsersHandler:    users.NewHandler(repo, logger),
		Tokens:          tokens,
		AdminAuthSecret: adminSecret,
	})
	return r, tokens, repo
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMessageEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t, "")

	body := strings.NewReader(`{"message": "hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/message", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "What's your name?")
}

func TestHistoryRequiresSessionToken(t *testing.T) {
	r, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHistoryWithSessionToken(t *testing.T) {
	r, tokens, repo := newTestRouter(t, "")

	user := &users.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(context.Background(), user))
	token := tokens.Issue(user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set(chat.SessionTokenHeader, token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"messages":[]`)
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	r, _, _ := newTestRouter(t, "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAbsentWithoutSecret(t *testing.T) {
	r, _, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebChatMessageEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t, "")

	body := strings.NewReader(`{"session_id": "abc", "text": "hi there"}`)
	req := httptest.NewRequest(http.MethodPost, "/webchat/message", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"abc"`)
}
