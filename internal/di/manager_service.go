package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/configmanager"
	"github.com/omarluq/apimgr-sidecar/internal/rollout"
)

// ManagerService wraps the Configuration Manager. Manager is nil when the
// configured rollout strategy is "fixed" — per spec.md §12 supplement 4,
// CM is never constructed in that mode and the proxy pins to
// bootstrap_config_id directly.
type ManagerService struct {
	Manager *configmanager.Manager
}

// NewManager builds the Configuration Manager, wiring C1 (environment), C2
// (global context), C3/C4 (fetchers), and the data-plane commit callback
// together. Under the "fixed" rollout strategy it short-circuits before
// invoking GlobalContextService or TokenSourceService at all, so neither
// is ever constructed for a sidecar that never needs outbound auth.
func NewManager(i do.Injector) (*ManagerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	cfg := cfgSvc.Get()

	if !cfg.Rollout.IsManaged() {
		return &ManagerService{}, nil
	}

	envSvc := do.MustInvoke[*EnvironmentService](i)
	globalCtxSvc := do.MustInvoke[*GlobalContextService](i)
	tokenSvc := do.MustInvoke[*TokenSourceService](i)
	cacheSvc := do.MustInvoke[*CacheService](i)
	dataPlaneSvc := do.MustInvoke[*DataPlaneService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	serviceName := globalCtxSvc.GlobalContext.ServiceName()

	rolloutFetcher := rollout.NewRolloutFetcher(envSvc.Environment, tokenSvc.TokenSource, serviceName)
	configFetcher := rollout.NewConfigFetcher(envSvc.Environment, tokenSvc.TokenSource, cacheSvc.Cache, loggerSvc.Logger, serviceName)

	mgr := configmanager.New(
		envSvc.Environment,
		globalCtxSvc.GlobalContext,
		rolloutFetcher,
		configFetcher,
		cfg.Rollout.GetRefreshInterval(),
		dataPlaneSvc.State.Store,
		loggerSvc.Logger,
	)

	return &ManagerService{Manager: mgr}, nil
}

// Shutdown implements do.Shutdowner, stopping the refresh loop if it was
// ever started.
func (m *ManagerService) Shutdown() error {
	if m.Manager != nil {
		m.Manager.Stop()
	}
	return nil
}
