package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/breaker"
)

// BreakerService wraps the per-endpoint circuit breaker tracker guarding
// CM's own outbound calls (spec.md §11.4).
type BreakerService struct {
	Tracker *breaker.Tracker
}

// NewBreaker creates the circuit breaker tracker from server config.
func NewBreaker(i do.Injector) (*BreakerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	return &BreakerService{
		Tracker: breaker.NewTracker(cfgSvc.Get().Breaker.CircuitBreaker, loggerSvc.Logger),
	}, nil
}
