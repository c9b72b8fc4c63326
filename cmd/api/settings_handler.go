package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"timesync-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

const ollamaCheckTimeout = 5 * time.Second

// RuntimeSettings holds the Ollama endpoint the schedule client reads on
// every request. It can be changed through /api/settings/ollama.
type RuntimeSettings struct {
	mu      sync.RWMutex
	baseURL string
	model   string
}

func NewRuntimeSettings(baseURL, model string) *RuntimeSettings {
	return &RuntimeSettings{baseURL: baseURL, model: model}
}

func (s *RuntimeSettings) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

func (s *RuntimeSettings) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Set replaces the base URL. An empty model keeps the current one.
func (s *RuntimeSettings) Set(baseURL, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = baseURL
	if model != "" {
		s.model = model
	}
}

type ollamaSettingsResponse struct {
	BaseURL string `json:"ollama_base_url"`
	Model   string `json:"ollama_model"`
}

type UpdateOllamaSettingsRequest struct {
	BaseURL string `json:"ollama_base_url" binding:"required,url"`
	Model   string `json:"ollama_model,omitempty"`
}

type SettingsHandler struct {
	settings *RuntimeSettings
}

func NewSettingsHandler(settings *RuntimeSettings) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GET /api/settings/ollama
func (h *SettingsHandler) GetOllama(c *gin.Context) {
	c.JSON(http.StatusOK, ollamaSettingsResponse{
		BaseURL: h.settings.BaseURL(),
		Model:   h.settings.Model(),
	})
}

// PUT /api/settings/ollama
func (h *SettingsHandler) UpdateOllama(c *gin.Context) {
	var req UpdateOllamaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.settings.Set(req.BaseURL, req.Model)
	c.JSON(http.StatusOK, ollamaSettingsResponse{
		BaseURL: h.settings.BaseURL(),
		Model:   h.settings.Model(),
	})
}

// TestOllama calls /api/tags on the given URL, or the current one when
// the body is empty.
// POST /api/settings/ollama/test
func (h *SettingsHandler) TestOllama(c *gin.Context) {
	var req struct {
		BaseURL string `json:"ollama_base_url"`
	}
	_ = c.ShouldBindJSON(&req)
	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = h.settings.BaseURL()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ollamaCheckTimeout)
	defer cancel()

	status, err := ai.Ping(ctx, baseURL)
	switch {
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "error": err.Error()})
	case status != http.StatusOK:
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "status_code": status})
	default:
		c.JSON(http.StatusOK, gin.H{"connected": true, "ollama_base_url": baseURL})
	}
}
