// Package ratelimit implements a token bucket throttle on per-session
// message intake.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"symscan/internal/metrics"
)

// Config holds rate limiter configuration. A non-positive PerSecond
// disables throttling.
type Config struct {
	PerSecond float64
	Burst     int
}

// Limiter throttles one session's message intake. Each session owns its own
// Limiter; no state is shared between sessions.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter from the configuration.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.PerSecond)
	if cfg.PerSecond <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(r, burst)}
}

// Wait blocks until a token is available, respecting the context. Delays
// beyond a millisecond are recorded so floods show up in metrics.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if duration := time.Since(start); duration > time.Millisecond {
		metrics.ObserveRateLimitDelay(duration)
	}
	return nil
}
