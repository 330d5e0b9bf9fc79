package serverconfig_test

import (
	"os"
	"strings"
	"testing"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

func TestLoadValidYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
rollout:
  service_name: "echo.endpoints.test-project.cloud.goog"
  bootstrap_config_id: "2026-08-03r0"
  rollout_strategy: "managed"
  refresh_interval_ms: 60000

auth:
  static_token: "test-token"

logging:
  level: "info"
  format: "json"
`

	cfg, err := serverconfig.LoadFromReader(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Rollout.ServiceName != "echo.endpoints.test-project.cloud.goog" {
		t.Errorf("Expected service_name set, got %s", cfg.Rollout.ServiceName)
	}
	if cfg.Rollout.BootstrapConfigID != "2026-08-03r0" {
		t.Errorf("Expected bootstrap_config_id set, got %s", cfg.Rollout.BootstrapConfigID)
	}
	if cfg.Rollout.RefreshIntervalMS != 60000 {
		t.Errorf("Expected refresh_interval_ms=60000, got %d", cfg.Rollout.RefreshIntervalMS)
	}
	if cfg.Auth.StaticToken != "test-token" {
		t.Errorf("Expected static_token=test-token, got %s", cfg.Auth.StaticToken)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected logging level=info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected logging format=json, got %s", cfg.Logging.Format)
	}
}

func TestLoadEnvironmentExpansion(t *testing.T) {
	t.Parallel()

	testKey := "TEST_STATIC_TOKEN_12345"
	testValue := "bearer-test-value"
	os.Setenv(testKey, testValue)
	defer os.Unsetenv(testKey)

	yamlContent := `
rollout:
  service_name: "echo.endpoints.test-project.cloud.goog"
  bootstrap_config_id: "2026-08-03r0"
  rollout_strategy: "managed"

auth:
  static_token: "${` + testKey + `}"

logging:
  level: "info"
  format: "json"
`

	cfg, err := serverconfig.LoadFromReader(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Auth.StaticToken != testValue {
		t.Errorf("Expected static_token=%s, got %s", testValue, cfg.Auth.StaticToken)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
rollout:
  service_name: "echo.endpoints.test-project.cloud.goog
  # Missing closing quote above
  refresh_interval_ms: not_a_number
`

	_, err := serverconfig.LoadFromReader(strings.NewReader(yamlContent))
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse config YAML") {
		t.Errorf("Expected parse error message, got: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := serverconfig.Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open config file") {
		t.Errorf("Expected open error message, got: %v", err)
	}
}

func TestLoadFixedStrategy(t *testing.T) {
	t.Parallel()

	yamlContent := `
rollout:
  bootstrap_config_id: "2026-08-03r0"
  rollout_strategy: "fixed"

logging:
  level: "info"
  format: "json"
`

	cfg, err := serverconfig.LoadFromReader(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Rollout.GetEffectiveStrategy() != serverconfig.StrategyFixed {
		t.Errorf("Expected fixed strategy, got %q", cfg.Rollout.GetEffectiveStrategy())
	}
	if cfg.Rollout.IsManaged() {
		t.Error("Expected IsManaged() false for fixed strategy")
	}
}

func TestLoadManagedStrategyBlankServiceNameOffGCE(t *testing.T) {
	t.Parallel()

	// Off GCE (true for this test process), a blank service_name is left
	// blank rather than erroring — Validate() is what surfaces the gap.
	yamlContent := `
rollout:
  bootstrap_config_id: "2026-08-03r0"
  rollout_strategy: "managed"

logging:
  level: "info"
`

	cfg, err := serverconfig.LoadFromReader(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Rollout.ServiceName != "" {
		t.Errorf("Expected service_name to stay blank off-GCE, got %q", cfg.Rollout.ServiceName)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Expected Validate() to flag the still-missing service_name")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	yamlPath := tmpDir + "/config.yaml"

	yamlContent := `
rollout:
  service_name: "echo.endpoints.test-project.cloud.goog"
  bootstrap_config_id: "2026-08-03r0"
  rollout_strategy: "managed"

auth:
  static_token: "test-token"

logging:
  level: "info"
`

	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write temp YAML file: %v", err)
	}

	cfg, err := serverconfig.Load(yamlPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Rollout.ServiceName != "echo.endpoints.test-project.cloud.goog" {
		t.Errorf("Expected service_name set, got %s", cfg.Rollout.ServiceName)
	}
}
