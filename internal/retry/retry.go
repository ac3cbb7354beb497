// Package retry provides exponential-backoff retry for transient failures.
//
// The executor retries only operations classified idempotent; callers
// express that through the ShouldRetry predicate. The attempt count is
// reported back so failed executions can surface how many tries were spent.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config controls the retry behaviour.
type Config struct {
	// MaxAttempts is the total number of attempts (including the first).
	// Zero or negative values are treated as 1 (no retries).
	MaxAttempts int
	// InitialDelay is the wait before the second attempt. Subsequent
	// delays double up to MaxDelay.
	InitialDelay time.Duration
	// MaxDelay caps the per-attempt wait.
	MaxDelay time.Duration
	// ShouldRetry classifies errors as retryable. When nil, no error is
	// retried: retryability must be opted into, not assumed.
	ShouldRetry func(err error) bool
}

// DefaultConfig matches the assistant's executor bound: two attempts with
// a short backoff, suitable for lock contention and I/O blips.
var DefaultConfig = Config{
	MaxAttempts:  2,
	InitialDelay: 1 * time.Second,
	MaxDelay:     3 * time.Second,
}

// Do calls fn up to cfg.MaxAttempts times, backing off exponentially
// between attempts. It stops early when ctx is cancelled, fn succeeds, or
// ShouldRetry rejects the failure. Returns the error of the last attempt
// and the number of attempts actually made.
func Do(ctx context.Context, cfg Config, logger *slog.Logger, fn func() error) (int, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(error) bool { return false }
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, errors.Join(lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}

		if !shouldRetry(lastErr) {
			return attempt, lastErr
		}

		if attempt < cfg.MaxAttempts {
			if logger != nil {
				logger.Debug("retry: attempt failed, retrying",
					"attempt", attempt, "max", cfg.MaxAttempts,
					"err", lastErr, "delay", delay)
			}

			select {
			case <-ctx.Done():
				return attempt, errors.Join(lastErr, ctx.Err())
			case <-time.After(delay):
			}

			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return cfg.MaxAttempts, lastErr
}
