package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/globalctx"
)

// GlobalContextService wraps component C2, the Configuration Manager's
// global context.
type GlobalContextService struct {
	GlobalContext *globalctx.GlobalContext
}

// NewGlobalContext builds the global context from the live server config
// and the configured outbound token source. Only invoked when the rollout
// strategy is "managed" (see ManagerService) — under "fixed" strategy
// neither this nor TokenSourceService is ever constructed.
func NewGlobalContext(i do.Injector) (*GlobalContextService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	tokenSvc := do.MustInvoke[*TokenSourceService](i)

	return &GlobalContextService{
		GlobalContext: globalctx.New(cfgSvc, tokenSvc.TokenSource),
	}, nil
}
