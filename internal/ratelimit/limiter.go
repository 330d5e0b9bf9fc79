// Package ratelimit throttles outbound HTTP calls the sidecar issues against
// the service-management backend (spec.md §11.7). It is a safety net on top
// of the Configuration Manager's own tick-gated fetch decisions (§4.6): the
// gate decides whether a fetch happens at all, this package bounds how fast
// fetches that were decided on actually leave the process.
package ratelimit

import (
	"context"
	"errors"
)

// ErrContextCancelled is returned when the context is canceled during a
// blocking Wait.
var ErrContextCancelled = errors.New("ratelimit: context canceled")

// FetchLimiter bounds the rate of outbound fetch attempts. All implementations
// must be safe for concurrent use.
type FetchLimiter interface {
	// Allow reports whether a fetch may proceed right now, without blocking.
	Allow(ctx context.Context) bool

	// Wait blocks until a fetch is allowed or ctx is canceled.
	Wait(ctx context.Context) error

	// SetLimit updates the requests-per-minute limit dynamically.
	// rpm <= 0 is treated as unlimited.
	SetLimit(rpm int)
}
