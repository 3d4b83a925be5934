package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/executor"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

type spy struct {
	calls int
	err   error
}

func (s *spy) Execute(ctx context.Context, params map[string]any) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "PC locked", nil
}

func setupTestBridge(t *testing.T, lock *spy) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := executor.NewRegistry()
	registry.Register("lock_pc", executor.ClassPlain, lock)

	b := New(registry, middleware.NewSecretGuard("test-secret"), nil, 5*time.Second)
	return Router(b, nil)
}

func postCommand(t *testing.T, r *gin.Engine, env models.CommandEnvelope) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/command", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (status, result string) {
	t.Helper()
	var body struct {
		Status string `json:"status"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	return body.Status, body.Result
}

func TestCommandAcceptedWithValidSecret(t *testing.T) {
	lock := &spy{}
	r := setupTestBridge(t, lock)

	w := postCommand(t, r, models.CommandEnvelope{Secret: "test-secret", Command: "lock_pc"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	status, result := decodeResponse(t, w)
	if status != models.StatusOK {
		t.Fatalf("expected ok status, got %q", status)
	}
	if result != "PC locked" {
		t.Fatalf("unexpected result: %q", result)
	}
	if lock.calls != 1 {
		t.Fatalf("expected 1 executor call, got %d", lock.calls)
	}
}

func TestCommandRejectedWithBadSecret(t *testing.T) {
	lock := &spy{}
	r := setupTestBridge(t, lock)

	w := postCommand(t, r, models.CommandEnvelope{Secret: "wrong", Command: "lock_pc"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if lock.calls != 0 {
		t.Fatalf("executor must not run on a secret mismatch, got %d calls", lock.calls)
	}
}

func TestUnknownCommandIsAnErrorResult(t *testing.T) {
	r := setupTestBridge(t, &spy{})

	w := postCommand(t, r, models.CommandEnvelope{Secret: "test-secret", Command: "make_coffee"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	status, result := decodeResponse(t, w)
	if status != models.StatusError {
		t.Fatalf("expected error status, got %q", status)
	}
	if result == "" {
		t.Fatal("expected a descriptive error message")
	}
}

func TestExecutorFailureIsAnErrorResult(t *testing.T) {
	lock := &spy{err: errors.New("lock failed: no desktop session")}
	r := setupTestBridge(t, lock)

	w := postCommand(t, r, models.CommandEnvelope{Secret: "test-secret", Command: "lock_pc"})
	if w.Code != http.StatusOK {
		t.Fatalf("executor failures still answer 200, got %d", w.Code)
	}
	status, _ := decodeResponse(t, w)
	if status != models.StatusError {
		t.Fatalf("expected error status, got %q", status)
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	r := setupTestBridge(t, &spy{})

	req := httptest.NewRequest(http.MethodPost, "/command", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestBridge(t, &spy{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	r := setupTestBridge(t, &spy{})

	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleCommandUnauthorizedResult(t *testing.T) {
	lock := &spy{}
	registry := executor.NewRegistry()
	registry.Register("lock_pc", executor.ClassPlain, lock)
	b := New(registry, middleware.NewSecretGuard("test-secret"), nil, 5*time.Second)

	result := b.HandleCommand(context.Background(), models.CommandEnvelope{Secret: "wrong", Command: "lock_pc"})
	if result.Status != models.StatusError {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	if result.Message != middleware.UnauthorizedMessage {
		t.Fatalf("expected %q, got %q", middleware.UnauthorizedMessage, result.Message)
	}
	if lock.calls != 0 {
		t.Fatal("executor must not run on a secret mismatch")
	}
}
