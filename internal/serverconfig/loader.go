package serverconfig

import (
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/compute/metadata"
	"gopkg.in/yaml.v3"
)

// serviceNameMetadataAttr is the GCE instance metadata attribute ESPv2-style
// sidecars read the managed service name from when rollout.service_name is
// left blank in the server config (spec.md §3's host-metadata discovery).
const serviceNameMetadataAttr = "endpoints-service-name"

// Load reads and parses a YAML configuration file from the given path, then
// resolves rollout.service_name from GCE instance metadata if the file left
// it blank.
// Environment variables in the format ${VAR_NAME} are expanded before parsing.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", cerr)
		}
	}()

	return LoadFromReader(file)
}

// LoadFromReader reads and parses YAML configuration from an io.Reader, then
// resolves rollout.service_name from GCE instance metadata if the document
// left it blank.
// Environment variables in the format ${VAR_NAME} are expanded before parsing.
func LoadFromReader(r io.Reader) (*Config, error) {
	// Read entire content
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(content))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	resolveServiceName(&cfg)

	return &cfg, nil
}

// resolveServiceName fills in cfg.Rollout.ServiceName from GCE instance
// metadata when the server config left it blank and the rollout strategy
// needs one at all. A sidecar pinned to rollout_strategy: fixed never
// issues outbound calls, so it has nothing to resolve.
//
// Off-GCE, or on any metadata-server error, cfg is left unchanged: the
// existing managed-mode validation (service_name is required when managed)
// surfaces the gap instead of this function masking it with a swallowed
// error.
func resolveServiceName(cfg *Config) {
	if cfg.Rollout.ServiceName != "" || !cfg.Rollout.IsManaged() {
		return
	}
	if !metadata.OnGCE() {
		return
	}
	name, err := metadata.InstanceAttributeValue(serviceNameMetadataAttr)
	if err != nil || name == "" {
		return
	}
	cfg.Rollout.ServiceName = name
}
