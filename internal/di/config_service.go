package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

// ConfigService wraps the loaded server config with hot-reload support,
// delegating the atomic swap to serverconfig.Runtime: in-flight operations
// keep using the config they already read while new operations observe the
// reloaded one.
type ConfigService struct {
	runtime *serverconfig.Runtime
	watcher *serverconfig.Watcher
	path    string
}

// Get returns the current server config via a lock-free atomic load.
func (c *ConfigService) Get() *serverconfig.Config {
	return c.runtime.Get()
}

// StartWatching begins watching the config file for changes, swapping the
// atomic pointer on each successful reload. Call after the container is
// fully constructed; cancel ctx to stop watching.
func (c *ConfigService) StartWatching(ctx context.Context) {
	if c.watcher == nil {
		return
	}

	c.watcher.OnReload(func(newCfg *serverconfig.Config) error {
		c.runtime.Store(newCfg)
		log.Info().Str("path", c.path).Msg("server config hot-reloaded successfully")
		return nil
	})

	go func() {
		if err := c.watcher.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("server config watcher error")
		}
	}()

	log.Info().Str("path", c.path).Msg("server config file watcher started")
}

// Shutdown implements do.Shutdowner for graceful watcher cleanup.
func (c *ConfigService) Shutdown() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// NewConfig loads the server config from the configured path and creates a
// watcher. The watcher is created but not started; call StartWatching()
// after the container is initialized.
func NewConfig(i do.Injector) (*ConfigService, error) {
	path := do.MustInvokeNamed[string](i, ConfigPathKey)

	cfg, err := serverconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load server config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config at %s: %w", path, err)
	}

	svc := &ConfigService{path: path, runtime: serverconfig.NewRuntime(cfg)}

	watcher, err := serverconfig.NewWatcher(path, serverconfig.WithBootRolloutStrategy(cfg.Rollout.GetEffectiveStrategy()))
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("server config watcher creation failed, hot-reload disabled")
	} else {
		svc.watcher = watcher
	}

	return svc, nil
}

var _ serverconfig.RuntimeConfig = (*ConfigService)(nil)
