package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Result is the outcome of one fallback submission. Backend names the
// backend that produced the output, or the one that hard-failed; it is
// surfaced for observability and failure justifications.
type Result struct {
	Output  string
	Backend string
}

// Client walks an ordered list of candidate backends until one succeeds.
//
// The transition rules per backend, in order:
//   - success: stop, return the output and the backend's name;
//   - resource exhaustion: try the next backend;
//   - unavailable: abort, the error propagates as run-fatal;
//   - any other failure: stop without trying further backends, the
//     failure is scoped to the current question.
//
// Exhausting the whole list returns ErrAllBackendsExhausted.
type Client struct {
	backends []Backend
	logger   *slog.Logger
}

// NewClient builds a fallback client over backends in priority order.
func NewClient(logger *slog.Logger, backends ...Backend) (*Client, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{backends: backends, logger: logger}, nil
}

// Backends returns the configured backend names in priority order.
func (c *Client) Backends() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

// Submit runs the fallback state machine for one prompt.
//
// On a hard per-question failure the returned Result carries the failing
// backend's name with an empty output, alongside the error, so the caller
// can name the backend in the score record's justification.
func (c *Client) Submit(ctx context.Context, prompt string) (*Result, error) {
	for _, backend := range c.backends {
		c.logger.Info("attempting judge backend", "backend", backend.Name())

		out, err := backend.Submit(ctx, prompt)
		if err == nil {
			c.logger.Info("judge backend succeeded", "backend", backend.Name())
			return &Result{Output: out, Backend: backend.Name()}, nil
		}

		var be *BackendError
		if !errors.As(err, &be) {
			// Untyped failures are hard failures.
			return &Result{Backend: backend.Name()}, err
		}
		switch {
		case be.Type == ErrorTypeUnavailable:
			return nil, err
		case be.IsResourceExhaustion():
			c.logger.Warn("judge backend out of memory, falling back",
				"backend", backend.Name())
			continue
		default:
			c.logger.Error("judge backend failed",
				"backend", backend.Name(), "error", err)
			return &Result{Backend: backend.Name()}, err
		}
	}

	return nil, fmt.Errorf("%w: tried %s",
		ErrAllBackendsExhausted, strings.Join(c.Backends(), ", "))
}
