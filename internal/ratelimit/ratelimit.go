package ratelimit

import (
	"context"
	"iter"

	"golang.org/x/time/rate"
)

// Limiter paces documents flowing through a stream.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no rate limiting.
func New(docsPerSecond float64) *Limiter {
	if docsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}

	// burst of 1: the first document passes immediately, the rest are spaced
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(docsPerSecond), 1)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow is non-blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SetLimit can be called at runtime.
func (l *Limiter) SetLimit(docsPerSecond float64) {
	if docsPerSecond <= 0 {
		l.limiter.SetLimit(rate.Inf)
		return
	}
	l.limiter.SetLimit(rate.Limit(docsPerSecond))
}

// Limit returns 0 when unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

// Throttle waits on l before passing on each element of seq. When ctx is
// cancelled the context error is yielded once and iteration stops. Errors
// from seq are passed through without waiting.
func Throttle[T any](ctx context.Context, l *Limiter, seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err != nil {
				if !yield(v, err) {
					return
				}
				continue
			}
			if werr := l.Wait(ctx); werr != nil {
				var zero T
				yield(zero, werr)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
