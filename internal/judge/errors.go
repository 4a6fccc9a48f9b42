package judge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes judge backend failures for fallback classification.
// The type decides whether the fallback client moves on to the next
// backend, stops with a row-scoped failure, or aborts the whole run.
type ErrorType string

const (
	// ErrorTypeResourceExhausted indicates the backend could not load or
	// run its model for lack of memory. The fallback client tries the
	// next configured backend.
	ErrorTypeResourceExhausted ErrorType = "resource_exhausted"

	// ErrorTypeFailed indicates the backend ran and failed for any other
	// reason. The failure is scoped to the current question; no further
	// backends are tried.
	ErrorTypeFailed ErrorType = "backend_failed"

	// ErrorTypeUnavailable indicates the backend cannot be invoked at all
	// (executable missing, credentials absent). This is a process-level
	// precondition failure: no backend invocation can ever succeed, so
	// the whole scoring run aborts.
	ErrorTypeUnavailable ErrorType = "backend_unavailable"
)

// Sentinel errors for fallback outcomes.
var (
	// ErrBackendUnavailable is wrapped by unavailability failures; callers
	// detect it with errors.Is and abort the run.
	ErrBackendUnavailable = errors.New("judge backend unavailable")

	// ErrAllBackendsExhausted is returned when every configured backend
	// failed with resource exhaustion.
	ErrAllBackendsExhausted = errors.New("all judge backends exhausted")

	// ErrNoBackends indicates a client was constructed without backends.
	ErrNoBackends = errors.New("no judge backends configured")
)

// BackendError is a classified failure from one backend invocation.
type BackendError struct {
	// Backend is the identifier of the backend that failed.
	Backend string

	// Type drives the fallback state machine.
	Type ErrorType

	// Message is the backend's diagnostic, typically its error stream.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("judge backend %s: %s: %s", e.Backend, e.Type, e.Message)
	}
	return fmt.Sprintf("judge backend %s: %s", e.Backend, e.Type)
}

func (e *BackendError) Unwrap() error { return e.Cause }

// IsResourceExhaustion reports whether the failure should trigger
// fallback to the next backend.
func (e *BackendError) IsResourceExhaustion() bool {
	return e.Type == ErrorTypeResourceExhausted
}

// classifyExitError classifies a backend's non-zero exit by its error
// stream. A memory-related message is the sole distinguished failure mode
// that triggers fallback; everything else is a hard per-question failure.
func classifyExitError(backend, stderr string, cause error) *BackendError {
	errType := ErrorTypeFailed
	if strings.Contains(strings.ToLower(stderr), "memory") {
		errType = ErrorTypeResourceExhausted
	}
	return &BackendError{
		Backend: backend,
		Type:    errType,
		Message: strings.TrimSpace(stderr),
		Cause:   cause,
	}
}

// unavailable builds a process-fatal unavailability error.
func unavailable(backend, message string) *BackendError {
	return &BackendError{
		Backend: backend,
		Type:    ErrorTypeUnavailable,
		Message: message,
		Cause:   ErrBackendUnavailable,
	}
}
