// Package serverconfig provides configuration loading, parsing, and hot-reload for
// the sidecar's own operating parameters — the options that control how the
// Configuration Manager behaves, as distinct from the remote rollout data CM fetches.
package serverconfig

import (
	"errors"
	"strings"
	"time"

	"github.com/omarluq/apimgr-sidecar/internal/blobcache"
	"github.com/omarluq/apimgr-sidecar/internal/breaker"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

// Configuration errors.
var (
	ErrServiceNameRequired = errors.New("serverconfig: service_name is required when rollout_strategy is managed")
)

// RuntimeConfig defines the interface for accessing configuration that supports
// hot-reload. Components that need to observe config changes should hold this
// interface instead of a direct *Config pointer, which would go stale after reload.
type RuntimeConfig interface {
	Get() *Config
}

// Rollout strategy constants, per spec.md §6.
const (
	// StrategyManaged means CM actively tracks remote rollouts.
	StrategyManaged = "managed"
	// StrategyFixed means CM is disabled; the proxy pins to BootstrapConfigID.
	StrategyFixed = "fixed"
)

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config represents the complete sidecar configuration: the server-config
// options CM reads (§6) plus the ambient logging/cache/breaker tuning that
// is not part of CM's contract but governs how its collaborators behave.
type Config struct {
	Rollout RolloutConfig      `yaml:"rollout"`
	Logging LoggingConfigTop   `yaml:"logging"`
	Cache   blobcache.Config   `yaml:"cache"`
	Breaker breaker.Config     `yaml:"breaker"`
	Auth    OutboundAuthConfig `yaml:"auth"`
	Status  StatusConfig       `yaml:"status"`
	Limiter LimiterConfig      `yaml:"limiter"`
}

// StatusConfig configures the sidecar's operator-facing status endpoint
// (spec.md §11.9), entirely separate from CM's own outbound calls.
type StatusConfig struct {
	// Listen is the address the status HTTP server binds, e.g. ":9901".
	Listen string `yaml:"listen"`
}

// DefaultStatusListen is used when StatusConfig.Listen is unset.
const DefaultStatusListen = ":9901"

// GetListen returns the configured listen address or DefaultStatusListen.
func (s *StatusConfig) GetListen() string {
	if s.Listen == "" {
		return DefaultStatusListen
	}
	return s.Listen
}

// LimiterConfig configures the token-bucket limiter guarding CM's own
// outbound fetches (spec.md §11.7), independent of the refresh interval.
type LimiterConfig struct {
	// RequestsPerMinute bounds the rate of outbound fetch attempts. <= 0 is
	// unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// RolloutConfig holds the subset of server-config options CM itself consumes,
// named exactly as in spec.md §6.
type RolloutConfig struct {
	// ServiceName overrides host-metadata discovery of the service identity.
	ServiceName string `yaml:"service_name"`

	// BootstrapConfigID is used directly when Strategy is "fixed", and as the
	// seed value before CM's first successful commit when Strategy is "managed".
	BootstrapConfigID string `yaml:"bootstrap_config_id"`

	// Strategy selects "managed" (CM active) or "fixed" (CM disabled).
	Strategy string `yaml:"rollout_strategy"`

	// RefreshIntervalMS is the periodic timer interval driving C6's ticks.
	// Defaults to 60000 (one minute) per spec.md §4.6.
	RefreshIntervalMS int `yaml:"refresh_interval_ms"`
}

// GetEffectiveStrategy returns the configured strategy, defaulting to managed.
func (r *RolloutConfig) GetEffectiveStrategy() string {
	if r.Strategy == "" {
		return StrategyManaged
	}
	return r.Strategy
}

// IsManaged reports whether CM should be constructed and driven at all.
func (r *RolloutConfig) IsManaged() bool {
	return r.GetEffectiveStrategy() == StrategyManaged
}

// DefaultRefreshInterval is used when RefreshIntervalMS is unset.
const DefaultRefreshInterval = 60 * time.Second

// GetRefreshInterval returns the refresh interval as a time.Duration,
// defaulting to one minute per spec.md §2.
func (r *RolloutConfig) GetRefreshInterval() time.Duration {
	if r.RefreshIntervalMS <= 0 {
		return DefaultRefreshInterval
	}
	return time.Duration(r.RefreshIntervalMS) * time.Millisecond
}

// GetRefreshIntervalOption returns the refresh interval as an Option, None if unset.
func (r *RolloutConfig) GetRefreshIntervalOption() mo.Option[time.Duration] {
	if r.RefreshIntervalMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(r.RefreshIntervalMS) * time.Millisecond)
}

// OutboundAuthConfig configures the bearer token CM attaches to its own
// outbound requests against the service-management backend (§11.8).
type OutboundAuthConfig struct {
	// StaticToken, if set, is used verbatim as the bearer token. Intended for
	// local development and tests.
	StaticToken string `yaml:"static_token"`

	// OAuthScope is the OAuth2 scope requested when StaticToken is empty. If
	// ClientID is also empty, this scopes a Google Application Default
	// Credentials lookup instead of client-credentials.
	OAuthScope string `yaml:"oauth_scope"`

	// ClientID, ClientSecret, and TokenURL configure an OAuth2
	// client-credentials grant as an alternative to Google ADC, for
	// non-GCP identity providers fronting the service-management backend.
	ClientID     string `yaml:"oauth_client_id"`
	ClientSecret string `yaml:"oauth_client_secret"`
	TokenURL     string `yaml:"oauth_token_url"`
}

// LoggingConfigTop defines logging behavior for the whole sidecar process.
type LoggingConfigTop struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Pretty bool   `yaml:"pretty"` // colored console output
}

// ParseLevel converts a string log level to zerolog.Level.
// Returns zerolog.InfoLevel if the level string is invalid.
func (l *LoggingConfigTop) ParseLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
