package selfrag

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExternalService matches every collaborator failure.
	ErrExternalService = errors.New("external service error")

	// ErrExternalTimeout matches collaborator calls that hit their deadline.
	ErrExternalTimeout = errors.New("external service timeout")

	// ErrMissingCollaborator is returned by New when a dependency is nil.
	ErrMissingCollaborator = errors.New("missing collaborator")
)

// Collaborator names used in errors, logs and metrics.
const (
	CollaboratorDocumentStore   = "document_store"
	CollaboratorRelevance       = "relevance_classifier"
	CollaboratorGenerator       = "generator"
	CollaboratorGroundedness    = "groundedness_classifier"
	CollaboratorAnswerRelevance = "answer_relevance_classifier"
	CollaboratorWebSearch       = "web_search"
)

// ErrorKind separates deadline hits from other failures.
type ErrorKind string

const (
	KindFailure ErrorKind = "failure"
	KindTimeout ErrorKind = "timeout"
)

// ExternalServiceError wraps an error returned by a collaborator.
type ExternalServiceError struct {
	Collaborator string
	Kind         ErrorKind
	Err          error
}

func (e *ExternalServiceError) Error() string {
	if e.Kind == KindTimeout {
		return fmt.Sprintf("%s timed out: %v", e.Collaborator, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Collaborator, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExternalService, or ErrExternalTimeout for
// timeouts.
func (e *ExternalServiceError) Is(target error) bool {
	switch target {
	case ErrExternalService:
		return true
	case ErrExternalTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// call runs fn under the per-call timeout and classifies its error.
func call[T any](ctx context.Context, w *Workflow, collaborator string, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	v, err := fn(callCtx)
	w.metrics.observeCall(collaborator, time.Since(start), err)
	if err == nil {
		return v, nil
	}

	kind := KindFailure
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	var zero T
	return zero, &ExternalServiceError{Collaborator: collaborator, Kind: kind, Err: err}
}
