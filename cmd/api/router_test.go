package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authdomain "timesync-backend/internal/auth/domain"
	authrepo "timesync-backend/internal/auth/repository"
	authUsecase "timesync-backend/internal/auth/usecase"
	"timesync-backend/internal/session"
	"timesync-backend/internal/task/repository"
	taskUsecase "timesync-backend/internal/task/usecase"
	"timesync-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// stubAuth accepts the single token "good"
type stubAuth struct {
	authUsecase.AuthUsecase
}

func (stubAuth) ValidateToken(ctx context.Context, token string) (*authdomain.User, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &authdomain.User{ID: "u1", Email: "me@example.com"}, nil
}

func newTestRouter(t *testing.T, settings *RuntimeSettings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Timezone: "UTC"}
	if settings == nil {
		settings = NewRuntimeSettings("http://localhost:11434", "llama3")
	}
	uc := taskUsecase.NewTaskUsecase(repository.NewMemoryStore(), authrepo.NewMemoryProfileRepository(), nil, nil, session.NewProvider(), cfg)
	return NewHandler(stubAuth{}, uc, settings, cfg).Router()
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	r := newTestRouter(t, nil)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	r := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestOllamaSettingsRoundTrip(t *testing.T) {
	settings := NewRuntimeSettings("http://localhost:11434", "llama3")
	r := newTestRouter(t, settings)

	body := strings.NewReader(`{"ollama_base_url":"http://gpu-box:11434"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings/ollama", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if settings.BaseURL() != "http://gpu-box:11434" {
		t.Errorf("base url = %q", settings.BaseURL())
	}
	if settings.Model() != "llama3" {
		t.Errorf("model should be kept, got %q", settings.Model())
	}
}

func TestOllamaConnectionCheck(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer ollama.Close()

	r := newTestRouter(t, NewRuntimeSettings(ollama.URL, "llama3"))

	req := httptest.NewRequest(http.MethodPost, "/api/settings/ollama/test", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"connected":true`) {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestSettingsRequireBearerToken(t *testing.T) {
	settings := NewRuntimeSettings("http://localhost:11434", "llama3")
	r := newTestRouter(t, settings)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/settings/ollama", ""},
		{http.MethodPut, "/api/settings/ollama", `{"ollama_base_url":"http://attacker:11434"}`},
		{http.MethodPost, "/api/settings/ollama/test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}

	if settings.BaseURL() != "http://localhost:11434" {
		t.Errorf("base url changed to %q", settings.BaseURL())
	}
}
