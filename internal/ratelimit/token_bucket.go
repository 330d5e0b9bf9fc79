package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter implements FetchLimiter using golang.org/x/time/rate.
//
// The token bucket algorithm provides smooth rate limiting without the
// boundary burst problem of fixed windows. Burst is set equal to the limit
// so a freshly constructed limiter can absorb one full minute's worth of
// fetches instantly, then refills gradually.
//
// Thread safety: all methods are safe for concurrent use.
type TokenBucketLimiter struct {
	limiter *rate.Limiter
	rpm     int
	mu      sync.RWMutex
}

const unlimitedRPM = 1_000_000

// NewTokenBucketLimiter creates a token bucket limiter for rpm fetches per
// minute. rpm <= 0 is treated as unlimited.
func NewTokenBucketLimiter(rpm int) *TokenBucketLimiter {
	if rpm <= 0 {
		rpm = unlimitedRPM
	}
	return &TokenBucketLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		rpm:     rpm,
	}
}

// Allow checks if a fetch is allowed under the current limit. Non-blocking.
func (l *TokenBucketLimiter) Allow(_ context.Context) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limiter.Allow()
}

// Wait blocks until a fetch is allowed or ctx is canceled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	l.mu.RLock()
	limiter := l.limiter
	l.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ErrContextCancelled
		}
		return err
	}
	return nil
}

// SetLimit updates the requests-per-minute limit dynamically. rpm <= 0 is
// treated as unlimited.
func (l *TokenBucketLimiter) SetLimit(rpm int) {
	if rpm <= 0 {
		rpm = unlimitedRPM
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm)
	l.rpm = rpm
}

var _ FetchLimiter = (*TokenBucketLimiter)(nil)
