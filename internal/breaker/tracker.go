package breaker

import (
	"sync"

	"github.com/rs/zerolog"
)

// Tracker manages per-endpoint circuit breakers. "Endpoint" here is the
// rollouts endpoint or a configs/{config_id} target class (spec.md §11.4),
// never a data-plane backend — CM only protects its own outbound polling.
type Tracker struct {
	circuits map[string]*CircuitBreaker
	logger   *zerolog.Logger
	config   CircuitBreakerConfig
	mu       sync.RWMutex
}

// NewTracker creates a new Tracker with the given configuration.
func NewTracker(cfg CircuitBreakerConfig, logger *zerolog.Logger) *Tracker {
	return &Tracker{
		circuits: make(map[string]*CircuitBreaker),
		config:   cfg,
		logger:   logger,
	}
}

// GetOrCreateCircuit returns the circuit breaker for an endpoint, creating it
// if necessary. This method is thread-safe and uses lazy initialization.
func (t *Tracker) GetOrCreateCircuit(endpoint string) *CircuitBreaker {
	t.mu.RLock()
	cb, exists := t.circuits[endpoint]
	t.mu.RUnlock()

	if exists {
		return cb
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cb, exists = t.circuits[endpoint]; exists {
		return cb
	}

	cb = NewCircuitBreaker(endpoint, t.config, t.logger)
	t.circuits[endpoint] = cb

	if t.logger != nil {
		t.logger.Debug().
			Str("endpoint", endpoint).
			Msg("created circuit breaker")
	}

	return cb
}

// GetState returns the current state of an endpoint's circuit breaker.
// Returns StateClosed if no circuit exists for the endpoint (healthy by default).
func (t *Tracker) GetState(endpoint string) State {
	t.mu.RLock()
	cb, exists := t.circuits[endpoint]
	t.mu.RUnlock()

	if !exists {
		return StateClosed
	}
	return cb.State()
}

// RecordSuccess records a successful fetch for an endpoint.
func (t *Tracker) RecordSuccess(endpoint string) {
	cb := t.GetOrCreateCircuit(endpoint)
	cb.ReportSuccess()

	if t.logger != nil {
		t.logger.Debug().
			Str("endpoint", endpoint).
			Str("state", cb.State().String()).
			Msg("recorded success")
	}
}

// RecordFailure records a failed fetch for an endpoint.
func (t *Tracker) RecordFailure(endpoint string, err error) {
	cb := t.GetOrCreateCircuit(endpoint)
	cb.ReportFailure(err)

	if t.logger != nil {
		t.logger.Debug().
			Str("endpoint", endpoint).
			Str("state", cb.State().String()).
			Err(err).
			Msg("recorded failure")
	}
}

// AllStates returns a snapshot of all endpoint circuit states, used by the
// status CLI subcommand (spec.md §11.9).
func (t *Tracker) AllStates() map[string]State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]State, len(t.circuits))
	for name, cb := range t.circuits {
		states[name] = cb.State()
	}
	return states
}
