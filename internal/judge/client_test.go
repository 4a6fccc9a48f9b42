package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend scripts one backend's behavior and records invocations.
type stubBackend struct {
	name   string
	output string
	err    error
	calls  int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Submit(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func oomErr(name string) error {
	return &BackendError{Backend: name, Type: ErrorTypeResourceExhausted, Message: "requires more system memory"}
}

func hardErr(name string) error {
	return &BackendError{Backend: name, Type: ErrorTypeFailed, Message: "model blew up"}
}

func TestClient_FallbackOrder(t *testing.T) {
	first := &stubBackend{name: "mistral", err: oomErr("mistral")}
	second := &stubBackend{name: "gemma:2b", err: oomErr("gemma:2b")}
	third := &stubBackend{name: "tinyllama", output: `{"marks_awarded":4}`}

	client, err := NewClient(nil, first, second, third)
	require.NoError(t, err)

	res, err := client.Submit(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "tinyllama", res.Backend)
	assert.Equal(t, `{"marks_awarded":4}`, res.Output)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
}

func TestClient_HardFailureStopsFallback(t *testing.T) {
	first := &stubBackend{name: "mistral", err: hardErr("mistral")}
	second := &stubBackend{name: "gemma:2b", output: "never reached"}

	client, err := NewClient(nil, first, second)
	require.NoError(t, err)

	res, err := client.Submit(context.Background(), "prompt")
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "mistral", res.Backend)
	assert.Empty(t, res.Output)
	assert.Zero(t, second.calls, "hard failure must not try further backends")

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrorTypeFailed, be.Type)
}

func TestClient_AllBackendsExhausted(t *testing.T) {
	first := &stubBackend{name: "mistral", err: oomErr("mistral")}
	second := &stubBackend{name: "gemma:2b", err: oomErr("gemma:2b")}

	client, err := NewClient(nil, first, second)
	require.NoError(t, err)

	res, err := client.Submit(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrAllBackendsExhausted)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "mistral")
	assert.Contains(t, err.Error(), "gemma:2b")
}

func TestClient_UnavailableIsFatal(t *testing.T) {
	first := &stubBackend{name: "mistral", err: unavailable("mistral", "executable missing")}
	second := &stubBackend{name: "gemma:2b", output: "never reached"}

	client, err := NewClient(nil, first, second)
	require.NoError(t, err)

	res, err := client.Submit(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Nil(t, res)
	assert.Zero(t, second.calls)
}

func TestClient_NoBackends(t *testing.T) {
	_, err := NewClient(nil)
	require.ErrorIs(t, err, ErrNoBackends)
}

func TestClient_Backends(t *testing.T) {
	client, err := NewClient(nil,
		&stubBackend{name: "a"}, &stubBackend{name: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, client.Backends())
}

func TestClassifyExitError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   ErrorType
	}{
		{
			name:   "memory message triggers fallback",
			stderr: "Error: model requires more system MEMORY than is available",
			want:   ErrorTypeResourceExhausted,
		},
		{
			name:   "other failure is hard",
			stderr: "Error: model not found",
			want:   ErrorTypeFailed,
		},
		{
			name:   "empty stderr is hard",
			stderr: "",
			want:   ErrorTypeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := classifyExitError("m", tt.stderr, errors.New("exit status 1"))
			assert.Equal(t, tt.want, be.Type)
			assert.Equal(t, "m", be.Backend)
		})
	}
}

func TestNewClientFromConfig(t *testing.T) {
	client, err := NewClientFromConfig(BackendConfig{
		OllamaModels: []string{"mistral", "tinyllama"},
		GeminiAPIKey: "key",
		GeminiModel:  "gemini-2.5-flash",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral", "tinyllama", "gemini-2.5-flash"}, client.Backends())

	// No key: the remote backend is left out of the fallback list.
	client, err = NewClientFromConfig(BackendConfig{OllamaModels: []string{"mistral"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral"}, client.Backends())

	_, err = NewClientFromConfig(BackendConfig{}, nil)
	require.ErrorIs(t, err, ErrNoBackends)
}
