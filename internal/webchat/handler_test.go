package webchat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carewell-ai/care-assistant/pkg/logging"
)

type fakeResponder struct {
	response string
	err      error
	lastID   string
	lastMsg  string
}

func (f *fakeResponder) ProcessMessage(_ context.Context, userID, message string) (string, error) {
	f.lastID = userID
	f.lastMsg = message
	return f.response, f.err
}

func TestHandleMessage(t *testing.T) {
	responder := &fakeResponder{response: "Hello!"}
	handler := NewHandler(responder, nil, logging.Default())

	body, _ := json.Marshal(map[string]string{"session_id": "s1", "text": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/webchat/message", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleMessage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["response"] != "Hello!" {
		t.Errorf("expected Hello!, got %s", resp["response"])
	}
	if resp["session_id"] != "s1" {
		t.Errorf("expected session s1, got %s", resp["session_id"])
	}
	if responder.lastID != "s1" || responder.lastMsg != "hi" {
		t.Errorf("responder called with %s/%s", responder.lastID, responder.lastMsg)
	}
}

func TestHandleMessage_GeneratesSessionID(t *testing.T) {
	handler := NewHandler(&fakeResponder{response: "ok"}, nil, logging.Default())

	body, _ := json.Marshal(map[string]string{"text": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/webchat/message", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleMessage(w, req)

	var resp map[string]string
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if resp["session_id"] == "" {
		t.Error("expected a generated session id")
	}
}

func TestHandleMessage_MissingText(t *testing.T) {
	handler := NewHandler(&fakeResponder{}, nil, logging.Default())

	body, _ := json.Marshal(map[string]string{"session_id": "s1"})
	req := httptest.NewRequest(http.MethodPost, "/webchat/message", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleMessage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	handler := NewHandler(&fakeResponder{}, nil, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/webchat/message", strings.NewReader("{"))
	w := httptest.NewRecorder()

	handler.HandleMessage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandleMessage_ResponderError(t *testing.T) {
	handler := NewHandler(&fakeResponder{err: errors.New("boom")}, nil, logging.Default())

	body, _ := json.Marshal(map[string]string{"session_id": "s1", "text": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/webchat/message", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleMessage(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestGenerateSessionID_Unique(t *testing.T) {
	a := generateSessionID()
	b := generateSessionID()
	if a == "" || a == b {
		t.Errorf("expected unique session ids, got %s and %s", a, b)
	}
}
