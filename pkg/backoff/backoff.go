// Package backoff implements exponential backoff with jitter for retrying
// transient failures.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config holds retry parameters.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Retryable marks errors worth retrying. Non-retryable errors abort
// immediately.
type Retryable func(error) bool

// Do executes fn with exponential backoff until it succeeds, the attempts
// are exhausted, the error is not retryable, or ctx is cancelled.
func Do(ctx context.Context, cfg Config, retryable Retryable, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := delayFor(attempt, cfg.BaseDelay, cfg.MaxDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// delayFor computes baseDelay * 2^attempt with ±25% jitter, capped at maxDelay.
func delayFor(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))

	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	delay += jitter

	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	return time.Duration(delay)
}
