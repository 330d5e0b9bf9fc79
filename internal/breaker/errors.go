package breaker

import "errors"

// Sentinel errors for circuit breaker operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
	ErrCircuitOpen = errors.New("breaker: circuit breaker is open")
)
