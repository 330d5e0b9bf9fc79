package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/cmenv"
)

// EnvironmentService wraps the Configuration Manager's Environment port
// (component C1).
type EnvironmentService struct {
	Environment cmenv.Environment
}

// NewEnvironment builds the production HostEnvironment, wiring in the
// circuit breaker tracker and fetch rate limiter.
func NewEnvironment(i do.Injector) (*EnvironmentService, error) {
	breakerSvc := do.MustInvoke[*BreakerService](i)
	limiterSvc := do.MustInvoke[*LimiterService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	return &EnvironmentService{
		Environment: cmenv.NewHostEnvironment(nil, breakerSvc.Tracker, limiterSvc.Limiter, loggerSvc.Logger),
	}, nil
}
