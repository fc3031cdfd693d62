// Package ratelimit throttles how fast the runner starts parsing inputs.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces input processing. A nil *Limiter never waits.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a limiter admitting perSecond inputs per second with a burst of
// one. Zero or negative means unlimited.
func New(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next input may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Limit reports the configured rate, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	if l == nil || l.limiter.Limit() == rate.Inf {
		return 0
	}
	return float64(l.limiter.Limit())
}

func (l *Limiter) Unlimited() bool {
	return l.Limit() == 0
}
