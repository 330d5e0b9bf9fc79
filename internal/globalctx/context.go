// Package globalctx implements the Configuration Manager's global context
// (spec.md §4.2, component C2): the shared, mostly-read-only view of
// service identity, server configuration, the data-plane-observed rollout
// id, and outbound authentication that C3 through C6 are built against.
package globalctx

import (
	"context"
	"sync/atomic"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

// GlobalContext is component C2. service_name, bootstrap_config_id, and
// server_config are fixed after construction (read-only post-init per
// spec.md §4.2); rollout_id is the one field mutated after construction,
// via single-word atomic publication so a data-plane goroutine writing it
// never blocks or races with the refresh loop reading it (spec.md §5).
type GlobalContext struct {
	runtime     serverconfig.RuntimeConfig
	tokens      TokenSource
	rolloutID   atomic.Pointer[string]
	serviceName string
	bootstrap   string
}

// New builds a GlobalContext. runtime supplies the live server config
// (hot-reloadable, per internal/serverconfig.Watcher); tokens supplies the
// bearer token attached to outbound requests.
func New(runtime serverconfig.RuntimeConfig, tokens TokenSource) *GlobalContext {
	cfg := runtime.Get()
	g := &GlobalContext{
		runtime:     runtime,
		tokens:      tokens,
		serviceName: cfg.Rollout.ServiceName,
		bootstrap:   cfg.Rollout.BootstrapConfigID,
	}
	empty := ""
	g.rolloutID.Store(&empty)
	return g
}

// ServiceName returns the managed service name, fixed at construction time
// even if the underlying server config hot-reloads (metadata identity
// should not change while the process is running).
func (g *GlobalContext) ServiceName() string {
	return g.serviceName
}

// BootstrapConfigID returns the config id to use before any rollout has
// ever been observed, or the fixed config id under the "fixed" strategy.
func (g *GlobalContext) BootstrapConfigID() string {
	return g.bootstrap
}

// ServerConfig returns the live server configuration.
func (g *GlobalContext) ServerConfig() *serverconfig.Config {
	return g.runtime.Get()
}

// RolloutID returns the most recently observed rollout id from the
// data-plane signal, or "" if none has ever been observed. Single-word
// atomic read; callers race-tolerant by design (spec.md §5).
func (g *GlobalContext) RolloutID() string {
	p := g.rolloutID.Load()
	if p == nil {
		return ""
	}
	return *p
}

// SetRolloutID publishes a newly observed rollout id from the data plane.
// Safe to call concurrently with RolloutID and with itself.
func (g *GlobalContext) SetRolloutID(id string) {
	g.rolloutID.Store(&id)
}

// AuthToken returns the bearer token to attach to outbound requests against
// the service-management backend (spec.md §4.2 auth_token()).
func (g *GlobalContext) AuthToken(ctx context.Context) (string, error) {
	return g.tokens.Token(ctx)
}
