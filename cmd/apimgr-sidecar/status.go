package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running sidecar's status endpoint",
	Long: `Query a running apimgr-sidecar process's status endpoint for its
current rollout id, committed configs, and outbound circuit breaker states.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFileForStatus()
	}

	cfg, err := serverconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	statusURL := fmt.Sprintf("http://%s/status", cfg.Status.GetListen())

	client := &http.Client{Timeout: 5 * time.Second}

	//nolint:noctx // a one-shot CLI status check doesn't need context propagation
	resp, err := client.Get(statusURL)
	if err != nil {
		fmt.Printf("✗ apimgr-sidecar is not running (%s)\n", cfg.Status.GetListen())
		return fmt.Errorf("server not reachable: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ apimgr-sidecar returned unexpected status: %d\n", resp.StatusCode)
		return fmt.Errorf("status check failed with code %d", resp.StatusCode)
	}

	fmt.Println(string(body))

	return nil
}

// findConfigFileForStatus is a copy of findConfigFile from serve.go,
// duplicated to avoid shared state between subcommands.
func findConfigFileForStatus() string {
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		p := filepath.Join(home, ".config", "apimgr-sidecar", defaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return defaultConfigFile
}
