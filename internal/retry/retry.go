// Package retry provides a small bounded-backoff helper for reads that may
// race a recent write, such as loading a project right after the write that
// produced a notification event committed on another replica.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs fn up to attempts times. After a failed attempt it sleeps
// baseDelay multiplied by the attempt number (100ms, 200ms, ... for a 100ms
// base), so later attempts give a lagging read path more room. It returns
// nil on the first success, the context error if ctx is done while waiting,
// and the last attempt's error once the budget is exhausted.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	_, err := Value(ctx, attempts, baseDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](
	ctx context.Context,
	attempts int,
	baseDelay time.Duration,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	if attempts < 1 {
		return zero, fmt.Errorf("retry: attempts must be at least 1, got %d", attempts)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(baseDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
