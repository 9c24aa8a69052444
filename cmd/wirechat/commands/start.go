package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gcammarata/wirechat/internal/activity"
	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/config"
	"github.com/gcammarata/wirechat/pkg/metrics"
	"github.com/gcammarata/wirechat/pkg/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the wirechat server",
	Long: `Start the wirechat server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/wirechat/config.yaml.

Examples:
  # Start with default config location
  wirechat start

  # Start with custom config file
  wirechat start --config /etc/wirechat/config.yaml

  # Start with environment variable overrides
  WIRECHAT_LOGGING_LEVEL=DEBUG wirechat start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := initLogger(cfg); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	var act *activity.Log
	if cfg.Server.ActivityLog != "" {
		act, err = activity.Open(cfg.Server.ActivityLog)
		if err != nil {
			return fmt.Errorf("failed to open activity log: %w", err)
		}
		defer act.Close()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		m = metrics.NewMetrics(registry)
		go serveMetrics(registry, cfg.Metrics.Port)
	}

	// Cancel the context on SIGINT/SIGTERM for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	srv := server.New(cfg.Server, cfg.ShutdownTimeout, st, m, act)

	logger.Info("starting wirechat server",
		"version", Version,
		"port", cfg.Server.Port,
		"max_sessions", cfg.Server.MaxSessions,
		"database", string(cfg.Database.Type))

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// serveMetrics exposes the Prometheus scrape endpoint.
func serveMetrics(registry *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))

	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics server listening", "address", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", "error", err)
	}
}
