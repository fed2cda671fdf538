// Package ratelimit spaces outbound requests within a single run.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum delay between consecutive Wait calls. Build one
// per orchestrator run; it is never shared across runs.
type Limiter struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// New returns a limiter with a burst of one, so the first Wait returns
// immediately and every later one waits out the remaining delay.
// A non-positive delay disables waiting.
func New(delay time.Duration) *Limiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, 1),
		delay:   delay,
	}
}

// Wait blocks until the delay since the previous Wait has elapsed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.limiter.Wait(ctx)
}

// Delay is the configured spacing.
func (l *Limiter) Delay() time.Duration {
	return l.delay
}
