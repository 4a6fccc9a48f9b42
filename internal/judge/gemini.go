package judge

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiBackend scores through the Gemini API. It is the remote arm of
// the judge capability; a 429 from the API plays the role the local
// backends' out-of-memory exit plays, so the fallback client treats both
// the same way.
type GeminiBackend struct {
	APIKey string
	Model  string
}

// NewGeminiBackend returns a backend for one Gemini model.
func NewGeminiBackend(apiKey, model string) *GeminiBackend {
	return &GeminiBackend{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

// Name implements Backend.
func (g *GeminiBackend) Name() string { return g.Model }

// Submit implements Backend.
func (g *GeminiBackend) Submit(ctx context.Context, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", unavailable(g.Model, "GEMINI_API_KEY is empty")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", &BackendError{
			Backend: g.Model,
			Type:    ErrorTypeFailed,
			Message: "create gemini client",
			Cause:   err,
		}
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	// The prompt's output contract is a single JSON object; ask the API
	// to enforce it.
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", g.classify(err)
	}

	text := collectText(resp)
	if text == "" {
		return "", &BackendError{
			Backend: g.Model,
			Type:    ErrorTypeFailed,
			Message: "gemini returned no text candidates",
		}
	}
	return text, nil
}

func (g *GeminiBackend) classify(err error) *BackendError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &BackendError{
			Backend: g.Model,
			Type:    ErrorTypeResourceExhausted,
			Message: apiErr.Message,
			Cause:   err,
		}
	}
	return classifyExitError(g.Model, err.Error(), err)
}

func collectText(resp *genai.GenerateContentResponse) string {
	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.WriteString(string(txt))
			}
		}
	}
	return strings.TrimSpace(out.String())
}
