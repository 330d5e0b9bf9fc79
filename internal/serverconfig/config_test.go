package serverconfig_test

import (
	"testing"
	"time"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
	"github.com/rs/zerolog"
)

func TestRolloutConfigGetEffectiveStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strategy string
		expected string
	}{
		{"empty defaults to managed", "", serverconfig.StrategyManaged},
		{"explicit managed", serverconfig.StrategyManaged, serverconfig.StrategyManaged},
		{"explicit fixed", serverconfig.StrategyFixed, serverconfig.StrategyFixed},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			r := serverconfig.RolloutConfig{Strategy: testCase.strategy}
			if got := r.GetEffectiveStrategy(); got != testCase.expected {
				t.Errorf("GetEffectiveStrategy() = %q, want %q", got, testCase.expected)
			}
		})
	}
}

func TestRolloutConfigIsManaged(t *testing.T) {
	t.Parallel()

	managed := serverconfig.RolloutConfig{Strategy: serverconfig.StrategyManaged}
	if !managed.IsManaged() {
		t.Error("expected IsManaged() true for managed strategy")
	}

	fixed := serverconfig.RolloutConfig{Strategy: serverconfig.StrategyFixed}
	if fixed.IsManaged() {
		t.Error("expected IsManaged() false for fixed strategy")
	}

	empty := serverconfig.RolloutConfig{}
	if !empty.IsManaged() {
		t.Error("expected IsManaged() true when strategy unset (defaults to managed)")
	}
}

func TestRolloutConfigGetRefreshInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ms       int
		expected time.Duration
	}{
		{"zero defaults to one minute", 0, serverconfig.DefaultRefreshInterval},
		{"negative defaults to one minute", -1, serverconfig.DefaultRefreshInterval},
		{"custom value", 30000, 30 * time.Second},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			r := serverconfig.RolloutConfig{RefreshIntervalMS: testCase.ms}
			if got := r.GetRefreshInterval(); got != testCase.expected {
				t.Errorf("GetRefreshInterval() = %v, want %v", got, testCase.expected)
			}
		})
	}
}

func TestRolloutConfigGetRefreshIntervalOption(t *testing.T) {
	t.Parallel()

	zero := serverconfig.RolloutConfig{RefreshIntervalMS: 0}
	if opt := zero.GetRefreshIntervalOption(); opt.IsPresent() {
		t.Error("expected None for zero RefreshIntervalMS")
	}

	set := serverconfig.RolloutConfig{RefreshIntervalMS: 15000}
	opt := set.GetRefreshIntervalOption()
	if !opt.IsPresent() {
		t.Fatal("expected Some for positive RefreshIntervalMS")
	}
	if got := opt.MustGet(); got != 15*time.Second {
		t.Errorf("MustGet() = %v, want 15s", got)
	}
}

func TestLoggingConfigTopParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"uppercase", "DEBUG", zerolog.DebugLevel},
		{"invalid defaults to info", "verbose", zerolog.InfoLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			l := serverconfig.LoggingConfigTop{Level: testCase.level}
			if got := l.ParseLevel(); got != testCase.expected {
				t.Errorf("ParseLevel() = %v, want %v", got, testCase.expected)
			}
		})
	}
}

func TestConfigStructComposition(t *testing.T) {
	t.Parallel()

	cfg := serverconfig.MakeTestConfig()

	if cfg.Rollout.ServiceName == "" {
		t.Error("expected test config to carry a service name")
	}
	if cfg.Rollout.GetEffectiveStrategy() != serverconfig.StrategyManaged {
		t.Errorf("expected managed strategy, got %q", cfg.Rollout.GetEffectiveStrategy())
	}
}
