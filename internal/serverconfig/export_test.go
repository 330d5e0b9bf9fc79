package serverconfig

import (
	"github.com/omarluq/apimgr-sidecar/internal/blobcache"
	"github.com/omarluq/apimgr-sidecar/internal/breaker"
)

// Test helpers that build valid configs for tests.

// MakeTestConfig returns a minimal valid Config with the Rollout, Logging,
// Cache, Breaker and Auth sections set; Status and Limiter stay zero.
func MakeTestConfig() *Config {
	return &Config{
		Rollout: MakeTestRolloutConfig(),
		Logging: MakeTestLoggingConfig(),
		Cache:   MakeTestCacheConfig(),
		Breaker: MakeTestBreakerConfig(),
		Auth:    MakeTestAuthConfig(),
	}
}

// MakeTestRolloutConfig returns a minimal RolloutConfig with all fields set.
func MakeTestRolloutConfig() RolloutConfig {
	return RolloutConfig{
		ServiceName:       "echo.endpoints.test-project.cloud.goog",
		BootstrapConfigID: "2026-08-03r0",
		Strategy:          StrategyManaged,
		RefreshIntervalMS: 60000,
	}
}

// MakeTestAuthConfig returns a minimal OutboundAuthConfig with a static
// token; the OAuth client-credential fields stay empty.
func MakeTestAuthConfig() OutboundAuthConfig {
	return OutboundAuthConfig{
		StaticToken: "test-token",
		OAuthScope:  "",
	}
}

// MakeTestLoggingConfig returns a minimal LoggingConfigTop with all fields set.
func MakeTestLoggingConfig() LoggingConfigTop {
	return LoggingConfigTop{
		Level:  "info",
		Format: "json",
		Pretty: false,
	}
}

// MakeTestCacheConfig returns a minimal blobcache.Config with all fields set.
func MakeTestCacheConfig() blobcache.Config {
	return blobcache.Config{
		Mode:      blobcache.ModeDisabled,
		Olric:     blobcache.DefaultOlricConfig(),
		Ristretto: blobcache.DefaultRistrettoConfig(),
	}
}

// MakeTestBreakerConfig returns a minimal breaker.Config with all fields set.
func MakeTestBreakerConfig() breaker.Config {
	return breaker.Config{
		CircuitBreaker: breaker.CircuitBreakerConfig{
			OpenDurationMS:   30000,
			FailureThreshold: 5,
			HalfOpenProbes:   3,
		},
	}
}

// MakeTestValidationError returns a ValidationError with Errors initialized.
func MakeTestValidationError() *ValidationError {
	return &ValidationError{
		Errors: []string{},
	}
}
