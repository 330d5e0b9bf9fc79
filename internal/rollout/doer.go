package rollout

import (
	"context"
	"net/http"
)

// HTTPDoer is the subset of the Environment port (spec.md §4.1) the
// fetchers need: issue a request against a named endpoint class and get a
// response back. "Endpoint" is "rollouts" or "configs" — it names the
// circuit breaker and rate limiter the call runs through, not a specific
// URL. Implemented by internal/cmenv.
type HTTPDoer interface {
	Do(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token attached to outbound requests
// (spec.md §4.2 auth_token()).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
