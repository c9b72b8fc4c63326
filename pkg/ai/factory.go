package ai

import (
	"timesync-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey   string
	ScheduleAPIURL string

	// Ollama config, read on every request so runtime settings apply
	OllamaBaseURL func() string
	OllamaModel   func() string
}

// NewTextGenerator creates a TextGenerator based on the config.
// A Gemini generator is returned even without an API key; the missing key
// surfaces as an error on the first request.
func NewTextGenerator(cfg Config) TextGenerator {
	switch cfg.Provider {
	case ProviderGemini:
		return gemini.NewGeminiService(cfg.GeminiAPIKey, cfg.ScheduleAPIURL)

	case ProviderOllama:
		return newOllamaFromConfig(cfg)

	default:
		// Default to Gemini if API key is available, otherwise Ollama
		if cfg.GeminiAPIKey != "" {
			return gemini.NewGeminiService(cfg.GeminiAPIKey, cfg.ScheduleAPIURL)
		}
		return newOllamaFromConfig(cfg)
	}
}

func newOllamaFromConfig(cfg Config) *OllamaService {
	if cfg.OllamaBaseURL == nil || cfg.OllamaModel == nil {
		return NewOllamaService("", "")
	}
	return NewOllamaServiceWithGetters(cfg.OllamaBaseURL, cfg.OllamaModel)
}
