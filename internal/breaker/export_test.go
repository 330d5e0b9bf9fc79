package breaker

// HasCircuits returns whether the circuits map is initialized (for testing).
func (t *Tracker) HasCircuits() bool {
	return t.circuits != nil
}

// NewTestBreaker builds a CircuitBreaker with a nil logger for unit tests.
func NewTestBreaker(failureThreshold, openDurationMS, halfOpenProbes int) *CircuitBreaker {
	cfg := CircuitBreakerConfig{
		FailureThreshold: failureThreshold,
		OpenDurationMS:   openDurationMS,
		HalfOpenProbes:   halfOpenProbes,
	}
	return NewCircuitBreaker("test-provider", cfg, nil)
}
