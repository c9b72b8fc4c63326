package ai

import (
	"context"
	"errors"
	"time"
)

// ErrScheduleFetch wraps every failure of a schedule suggestion request.
var ErrScheduleFetch = errors.New("failed to fetch schedule")

// ScheduleTask is the part of a task that goes into a schedule prompt
type ScheduleTask struct {
	Name     string     `json:"name"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Priority string     `json:"priority"`
}

// TextGenerator is the interface for generative text providers
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
