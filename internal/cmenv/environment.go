// Package cmenv implements the Configuration Manager's Environment port
// (spec.md §4.1, component C1): the host-provided timer, HTTP transport,
// and logging surface the rest of the Configuration Manager is built
// against. Concrete instances wrap net/http, internal/breaker, and
// internal/ratelimit so a CM tick against a failing or rate-limited
// endpoint fails fast instead of blocking.
package cmenv

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Timer is a stoppable periodic timer. Stop is idempotent; once stopped, no
// further callbacks fire, though one already in progress may still
// complete (spec.md §4.1, §5 cancellation semantics).
type Timer interface {
	Stop()
}

// Environment is the full port the Configuration Manager is built against.
// A concrete Environment is shared by C3 (rollout fetcher) and C4 (config
// fetcher) and owns the per-endpoint circuit breakers and rate limiter
// that guard outbound calls.
type Environment interface {
	// StartPeriodicTimer starts a timer that invokes onTick every interval
	// until Stop is called on the returned Timer.
	StartPeriodicTimer(interval time.Duration, onTick func()) Timer

	// Do issues req against the named endpoint class ("rollouts" or
	// "configs"), running it through that endpoint's circuit breaker and
	// the shared fetch rate limiter.
	Do(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error)

	// Logger returns the structured logger callbacks should use.
	Logger() *zerolog.Logger
}
