package judge

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// defaultOllamaBinary is resolved via PATH unless overridden.
const defaultOllamaBinary = "ollama"

// OllamaBackend runs a model through the local ollama executable. The
// prompt goes to standard input, the generated text comes back on
// standard output, and a non-zero exit with a memory-related error stream
// is classified as resource exhaustion.
type OllamaBackend struct {
	// Model is the ollama model name, e.g. "mistral" or "gemma:2b".
	Model string

	// Binary overrides the executable path. Empty resolves "ollama" from
	// PATH.
	Binary string
}

// NewOllamaBackend returns a backend for one local ollama model.
func NewOllamaBackend(model string) *OllamaBackend {
	return &OllamaBackend{Model: model}
}

// Name implements Backend.
func (o *OllamaBackend) Name() string { return o.Model }

// Submit implements Backend. A missing executable is an unavailability
// error: the whole scoring run depends on it, not just this question.
func (o *OllamaBackend) Submit(ctx context.Context, prompt string) (string, error) {
	binary := o.Binary
	if binary == "" {
		binary = defaultOllamaBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", unavailable(o.Model, "ollama executable not found in PATH")
	}

	cmd := exec.CommandContext(ctx, path, "run", o.Model)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", classifyExitError(o.Model, stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
