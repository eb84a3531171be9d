package factory

import (
	"fmt"

	"sado-notes-be/pkg/llm"
	"sado-notes-be/pkg/llm/gemini"
	"sado-notes-be/pkg/llm/ollama"
)

type Config struct {
	Provider      string
	Model         string
	GeminiAPIKey  string
	GeminiBaseURL string
	OllamaBaseURL string
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.Model), nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
