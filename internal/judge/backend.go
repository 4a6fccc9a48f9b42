// Package judge invokes text-generation backends to score one answer
// against its marking scheme, and recovers from unreliable backends by
// falling back through an ordered candidate list.
//
// A backend is a capability interface: one implementation shells out to a
// local inference runtime, another calls a remote API. The fallback state
// machine in Client is backend-agnostic; it only looks at the classified
// error type of each attempt.
package judge

import "context"

// Backend submits a prompt to one judge and returns its raw generated
// text. Invocations are synchronous and blocking; no timeout is enforced
// at this layer, the caller's context may impose one.
//
// Failures must be returned as *BackendError so the fallback client can
// classify them.
type Backend interface {
	// Name is the backend identifier surfaced for observability, e.g. the
	// model name.
	Name() string

	// Submit sends the prompt and returns the backend's output text.
	Submit(ctx context.Context, prompt string) (string, error)
}
