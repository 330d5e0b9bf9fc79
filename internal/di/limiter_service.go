package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/ratelimit"
)

// LimiterService wraps the token-bucket limiter throttling CM's own
// outbound fetches (spec.md §11.7).
type LimiterService struct {
	Limiter ratelimit.FetchLimiter
}

// NewLimiter creates the limiter from server config.
func NewLimiter(i do.Injector) (*LimiterService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	return &LimiterService{
		Limiter: ratelimit.NewTokenBucketLimiter(cfgSvc.Get().Limiter.RequestsPerMinute),
	}, nil
}
