package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/omarluq/apimgr-sidecar/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the configuration manager and its status endpoint",
	Long: `Start the Configuration Manager's refresh loop and the operator-facing
status HTTP endpoint a data plane or health check can query.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFile()
	}

	container, err := di.NewContainer(configPath)
	if err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("failed to build container")
		return err
	}

	loggerSvc, err := di.Invoke[*di.LoggerService](container)
	if err != nil {
		return err
	}
	log.Logger = *loggerSvc.Logger

	cfgSvc, err := di.Invoke[*di.ConfigService](container)
	if err != nil {
		return err
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	cfgSvc.StartWatching(watchCtx)

	mgrSvc, err := di.Invoke[*di.ManagerService](container)
	if err != nil {
		return err
	}
	if mgrSvc.Manager != nil {
		mgrSvc.Manager.Init()
		log.Info().Msg("configuration manager started")
	} else {
		log.Info().Str("bootstrap_config_id", cfgSvc.Get().Rollout.BootstrapConfigID).
			Msg("rollout strategy is fixed, configuration manager disabled")
	}

	breakerSvc, err := di.Invoke[*di.BreakerService](container)
	if err != nil {
		return err
	}
	dataPlaneSvc, err := di.Invoke[*di.DataPlaneService](container)
	if err != nil {
		return err
	}

	statusListen := cfgSvc.Get().Status.GetListen()
	statusServer := &http.Server{
		Addr:              statusListen,
		Handler:           statusHandler(mgrSvc, dataPlaneSvc, breakerSvc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM. container.ShutdownWithContext
	// stops CM's refresh timer (ManagerService.Shutdown calls Manager.Stop)
	// along with every other do.Shutdowner the container registered.
	done := make(chan struct{})
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		sig := <-sigs

		log.Info().Str("signal", sig.String()).Msg("shutting down")

		stopWatching()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := statusServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("status server shutdown error")
		}

		if err := container.ShutdownWithContext(ctx); err != nil {
			log.Error().Err(err).Msg("container shutdown error")
		}

		close(done)
	}()

	log.Info().Str("listen", statusListen).Msg("starting status endpoint")

	if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("status server error")
		return err
	}

	<-done
	log.Info().Msg("apimgr-sidecar stopped")

	return nil
}

func statusHandler(mgrSvc *di.ManagerService, dataPlaneSvc *di.DataPlaneService, breakerSvc *di.BreakerService) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		body, err := buildStatusJSON(mgrSvc, dataPlaneSvc, breakerSvc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// buildStatusJSON assembles the status document ad hoc with sjson rather
// than marshaling a struct, since the shape is a handful of loosely
// related facts rather than a wire type anything else consumes.
func buildStatusJSON(mgrSvc *di.ManagerService, dataPlaneSvc *di.DataPlaneService, breakerSvc *di.BreakerService) (string, error) {
	doc := "{}"
	var err error

	rolloutID := ""
	if mgrSvc.Manager != nil {
		rolloutID = mgrSvc.Manager.CurrentRolloutID()
	}
	doc, err = sjson.Set(doc, "current_rollout_id", rolloutID)
	if err != nil {
		return "", err
	}

	doc, err = sjson.Set(doc, "managed", mgrSvc.Manager != nil)
	if err != nil {
		return "", err
	}

	snapshot := dataPlaneSvc.State.Get()
	for i, cfg := range snapshot.Configs {
		doc, err = sjson.Set(doc, fmt.Sprintf("configs.%d.config_id", i), cfg.ConfigID)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, fmt.Sprintf("configs.%d.percent", i), cfg.Percent)
		if err != nil {
			return "", err
		}
	}

	for endpoint, state := range breakerSvc.Tracker.AllStates() {
		doc, err = sjson.Set(doc, "breakers."+sanitizeJSONKey(endpoint), state.String())
		if err != nil {
			return "", err
		}
	}

	return doc, nil
}

// sanitizeJSONKey replaces path separators sjson would otherwise interpret
// as nested object traversal, since endpoint names are URLs or config ids.
func sanitizeJSONKey(key string) string {
	out := make([]rune, 0, len(key))
	for _, r := range key {
		switch r {
		case '.', '*', '|', '#', '@':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func findConfigFile() string {
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
