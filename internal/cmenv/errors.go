package cmenv

import "errors"

// errHTTPFailureStatus marks a circuit breaker failure caused by a
// server-error or rate-limited status code rather than a transport error;
// the response itself is still returned to the caller unmodified.
var errHTTPFailureStatus = errors.New("cmenv: response status counts as circuit failure")
