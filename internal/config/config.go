// Package config loads pipeline configuration from the environment.
// Paths for a specific run come in as CLI flags; everything that names a
// backend, a model, or a credential lives here.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the process-wide configuration, built once at startup and
// passed down by handle. There are no hidden singletons: the embedder and
// the judge registry are constructed from this struct in main.
type Config struct {
	// OllamaModels is the judge fallback list, tried in order.
	OllamaModels []string

	// GeminiAPIKey enables the remote judge backend when set.
	GeminiAPIKey string
	GeminiModel  string

	// Embedding model files.
	OrtLibrary     string
	EmbedModel     string
	EmbedTokenizer string
	EmbedMaxSeqLen int

	// Results archive; empty driver disables archiving.
	DBDriver string
	DBDSN    string

	LogLevel string
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		OllamaModels: splitList(getEnv("GRADERY_OLLAMA_MODELS", "mistral,gemma:2b,tinyllama")),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		OrtLibrary:     os.Getenv("GRADERY_ORT_LIBRARY"),
		EmbedModel:     getEnv("GRADERY_EMBED_MODEL", "models/all-MiniLM-L6-v2.onnx"),
		EmbedTokenizer: getEnv("GRADERY_EMBED_TOKENIZER", "models/tokenizer.json"),
		EmbedMaxSeqLen: getEnvInt("GRADERY_EMBED_MAX_SEQ", 256),

		DBDriver: os.Getenv("GRADERY_DB_DRIVER"),
		DBDSN:    os.Getenv("GRADERY_DB_DSN"),

		LogLevel: getEnv("GRADERY_LOG_LEVEL", "info"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
