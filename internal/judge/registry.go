package judge

import "log/slog"

// BackendConfig describes the candidate backends for one scoring run, in
// priority order: local ollama models first, then the remote Gemini model
// as a last resort when configured.
type BackendConfig struct {
	// OllamaModels are tried first, in the order given.
	OllamaModels []string

	// GeminiAPIKey enables the remote backend when non-empty.
	GeminiAPIKey string

	// GeminiModel is the remote model name.
	GeminiModel string
}

// NewClientFromConfig assembles the fallback list from configuration.
func NewClientFromConfig(cfg BackendConfig, logger *slog.Logger) (*Client, error) {
	backends := make([]Backend, 0, len(cfg.OllamaModels)+1)
	for _, model := range cfg.OllamaModels {
		backends = append(backends, NewOllamaBackend(model))
	}
	if cfg.GeminiAPIKey != "" && cfg.GeminiModel != "" {
		backends = append(backends, NewGeminiBackend(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	return NewClient(logger, backends...)
}
