package graph

import (
	"context"
	"time"
)

// BackoffStrategy defines different backoff strategies
type BackoffStrategy int

const (
	FixedBackoff BackoffStrategy = iota
	ExponentialBackoff
	LinearBackoff
)

// RetryPolicy defines how to handle node failures.
// A nil policy (the default) runs each node exactly once.
type RetryPolicy struct {
	MaxRetries      int
	BackoffStrategy BackoffStrategy
	InitialDelay    time.Duration
	MaxDelay        time.Duration

	// Retryable decides whether an error is worth another attempt.
	// When nil every error is retried.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns a policy with three exponential retries.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:      3,
		BackoffStrategy: ExponentialBackoff,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        5 * time.Second,
	}
}

func (p *RetryPolicy) shouldRetry(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// delay calculates the wait before the given retry (0-based).
func (p *RetryPolicy) delay(attempt int) time.Duration {
	base := p.InitialDelay
	if base <= 0 {
		base = time.Second
	}

	var d time.Duration
	switch p.BackoffStrategy {
	case ExponentialBackoff:
		d = base * time.Duration(1<<attempt)
	case LinearBackoff:
		d = base * time.Duration(attempt+1)
	default:
		d = base
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// executeWithRetry runs fn under the policy. Context cancellation during a
// backoff aborts immediately.
func executeWithRetry[S any](ctx context.Context, policy *RetryPolicy, state S, fn func(context.Context, S) (S, error)) (S, error) {
	attempts := 1
	if policy != nil {
		attempts += policy.MaxRetries
	}

	var zero S
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx, state)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if policy == nil || attempt == attempts-1 || !policy.shouldRetry(err) {
			break
		}

		select {
		case <-time.After(policy.delay(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
