package provider

import (
	"context"
	"fmt"
	"time"
)

// backoffPolicy retries a function with exponential backoff. The zero value
// never retries; providers fill it from their configuration.
type backoffPolicy struct {
	maxRetries   int
	initialDelay time.Duration
	factor       float64
}

// retry runs fn until it succeeds, returns a non-retryable error, or the
// retry budget is exhausted. The context is checked before every attempt and
// while sleeping between attempts.
func (b backoffPolicy) retry(ctx context.Context, retryable func(error) bool, fn func() error) error {
	delay := b.initialDelay
	var lastErr error

	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}

		if attempt < b.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * b.factor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
