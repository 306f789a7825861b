package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Config controls retry behavior.
type Config struct {
	MaxAttempts    int           // total attempts including the first; 1 means no retries
	InitialBackoff time.Duration // delay before the first retry
	MaxBackoff     time.Duration // backoff ceiling
	JitterFraction float64       // random jitter as a fraction of the delay
}

// DefaultConfig suits interactive generation calls: short enough that a chat
// request fails within a few seconds rather than hanging.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		JitterFraction: 0.25,
	}
}

// Do runs fn until it succeeds, returns a non-transient error, or attempts
// run out. Context cancellation stops immediately with the last error.
func Do[T any](ctx context.Context, cfg Config, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}

	var zero T
	var lastErr error
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt >= cfg.MaxAttempts {
			return zero, lastErr
		}

		zap.L().Warn("retrying operation",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
}

func backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt-1))
	if max := float64(cfg.MaxBackoff); delay > max {
		delay = max
	}
	if cfg.JitterFraction > 0 {
		delay += (rand.Float64()*2 - 1) * delay * cfg.JitterFraction
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
