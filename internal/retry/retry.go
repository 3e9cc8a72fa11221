// Package retry runs remote-store operations with bounded exponential
// backoff. Every Sheets call in the pipeline goes through Do.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Config bounds the retry loop. MaxAttempts is a hard ceiling on total
// attempts, InitialDelay the sleep before the second attempt; the delay
// doubles after each failure (no jitter).
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultConfig matches the pipeline defaults: 5 attempts, 1s initial delay.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
	}
}

func (c Config) normalized() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 1 * time.Second
	}
	return c
}

// Do executes op until it succeeds or MaxAttempts is reached, sleeping
// delay, 2*delay, 4*delay... between attempts. Any error triggers a retry,
// including permanent ones; the final attempt's error is returned unchanged.
// The sleep honors ctx cancellation.
func Do(ctx context.Context, cfg Config, op func() error) error {
	cfg = cfg.normalized()

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}

		if lastErr = op(); lastErr == nil {
			return nil
		}

		slog.WarnContext(ctx, "Remote operation failed",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"error", lastErr)
	}

	return lastErr
}

// DoValue is Do for operations that produce a result.
func DoValue[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, cfg, func() error {
		var opErr error
		out, opErr = op()
		return opErr
	})
	return out, err
}
