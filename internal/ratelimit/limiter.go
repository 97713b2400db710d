// Package ratelimit throttles a worker's operation rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter caps operations per second for one worker. A nil *Limiter
// is valid and imposes no limit.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing opsPerSec operations per second.
// Returns nil when opsPerSec <= 0, meaning unlimited.
func New(opsPerSec int) *Limiter {
	if opsPerSec <= 0 {
		return nil
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(opsPerSec), opsPerSec),
	}
}

// Wait blocks until the next operation may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
