package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// NewLimiter allows perSecond calls per second with a burst of one. A
// non-positive rate disables limiting and returns nil.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
