// Package main is the entry point for apimgr-sidecar.
package main

import (
	"context"
	"os"

	"charm.land/fang/v2"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "config.yaml"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "apimgr-sidecar",
	Short: "Configuration-managing sidecar for a reverse-proxy data plane",
	Long: `apimgr-sidecar tracks a remote service's rollout state, downloads the
configs it names, and publishes an atomically-committed weighted config set
for a co-located data plane to read.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path (default: ./"+defaultConfigFile+" or ~/.config/apimgr-sidecar/"+defaultConfigFile+")")
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
