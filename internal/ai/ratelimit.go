package ai

import (
	"context"
	"time"

	"resumizer/internal/config"
	"resumizer/internal/errors"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound AI requests so a long run stays inside the
// provider's requests-per-minute quota. It is shared across operations and
// safe for concurrent use. A nil *RateLimiter never blocks.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *errors.Logger
	onWait  func(time.Duration)
}

// NewRateLimiter creates a client-side rate limiter from configuration.
// Returns nil when rate limiting is disabled.
func NewRateLimiter(cfg config.RateLimitConfig, logger *errors.Logger) *RateLimiter {
	if !cfg.Enabled {
		return nil
	}

	rps := rate.Limit(float64(cfg.RequestsPerMin) / 60.0)
	limiter := &RateLimiter{
		limiter: rate.NewLimiter(rps, cfg.BurstCapacity),
		logger:  logger,
	}

	if logger != nil {
		logger.Debug("AI rate limiter enabled",
			"requests_per_min", cfg.RequestsPerMin,
			"burst_capacity", cfg.BurstCapacity)
	}

	return limiter
}

// SetOnWait registers a callback invoked with the waited duration whenever a
// request had to be delayed. Used to surface waits as metrics.
func (r *RateLimiter) SetOnWait(fn func(time.Duration)) {
	if r == nil {
		return
	}
	r.onWait = fn
}

// Wait blocks until the limiter admits the next request or the context ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}

	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	waited := time.Since(start)
	if waited > 10*time.Millisecond {
		if r.logger != nil {
			r.logger.Debug("Rate limiter delayed AI request", "waited", waited.String())
		}
		if r.onWait != nil {
			r.onWait(waited)
		}
	}
	return nil
}
