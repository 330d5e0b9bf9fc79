package cmenv

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarluq/apimgr-sidecar/internal/breaker"
	"github.com/omarluq/apimgr-sidecar/internal/ratelimit"
)

// defaultHTTPTimeout bounds a single outbound call so a hung backend cannot
// stall a tick indefinitely; the applier's in-flight guard (spec.md §4.5
// step 1) depends on fetches eventually completing one way or another.
const defaultHTTPTimeout = 15 * time.Second

// HostEnvironment is the production Environment: real HTTP over net/http,
// guarded per endpoint class by a circuit breaker and a shared outbound
// rate limiter.
type HostEnvironment struct {
	client   *http.Client
	breakers *breaker.Tracker
	limiter  ratelimit.FetchLimiter
	logger   *zerolog.Logger
}

// NewHostEnvironment builds a HostEnvironment. client may be nil, in which
// case a client with defaultHTTPTimeout is constructed.
func NewHostEnvironment(client *http.Client, breakers *breaker.Tracker, limiter ratelimit.FetchLimiter, logger *zerolog.Logger) *HostEnvironment {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HostEnvironment{client: client, breakers: breakers, limiter: limiter, logger: logger}
}

// StartPeriodicTimer starts a real time.Ticker-backed timer.
func (e *HostEnvironment) StartPeriodicTimer(interval time.Duration, onTick func()) Timer {
	return startTickerTimer(interval, onTick)
}

// Do runs req through endpoint's rate limiter and circuit breaker before
// issuing it. If the limiter has no budget left or the breaker is open, the
// call fails immediately with no network activity — this is what lets P8
// (open-circuit endpoint fails without touching the network) hold.
func (e *HostEnvironment) Do(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var cb *breaker.CircuitBreaker
	var done func(error)
	if e.breakers != nil {
		cb = e.breakers.GetOrCreateCircuit(endpoint)
		d, err := cb.Allow()
		if err != nil {
			return nil, err
		}
		done = d
	}

	resp, err := e.client.Do(req)

	if done != nil {
		if err != nil {
			done(err)
		} else if breaker.ShouldCountAsFailure(resp.StatusCode, nil) {
			done(errHTTPFailureStatus)
		} else {
			done(nil)
		}
	}

	return resp, err
}

// Logger returns the shared structured logger.
func (e *HostEnvironment) Logger() *zerolog.Logger {
	return e.logger
}

var _ Environment = (*HostEnvironment)(nil)
