// Package retry provides deterministic, error-only retries for state
// commits and other short idempotent operations.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls retry behavior.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Backoff is the base delay between attempts; attempt n waits n times
	// this value.
	Backoff time.Duration
	// ShouldRetry filters retryable errors. Nil retries everything except
	// context cancellation.
	ShouldRetry func(error) bool
}

// DefaultPolicy is the commit policy: one retry after a short pause.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 2, Backoff: 100 * time.Millisecond}
}

// Do runs fn until it succeeds, the policy is exhausted, or the context
// ends. The last error is returned on failure.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempts := normalizedAttempts(p.MaxAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == attempts || !shouldRetry(ctx, p, lastErr) {
			break
		}
		if err := sleep(ctx, time.Duration(attempt)*p.Backoff); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizedAttempts(maxAttempts int) int {
	if maxAttempts < 1 {
		return 1
	}
	return maxAttempts
}

func shouldRetry(ctx context.Context, p Policy, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if p.ShouldRetry == nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	return p.ShouldRetry(err)
}
