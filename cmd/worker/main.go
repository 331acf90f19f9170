package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hms-api/internal/app"
	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		log.Error().Err(err).Msg("Worker failed")
		os.Exit(1)
	}
}

func newRootCmd(runFn func(configDir, healthAddr string) error) *cobra.Command {
	var configDir, healthAddr string
	rootCmd := &cobra.Command{
		Use:          "hms-worker",
		Short:        "Relay outbox events and send appointment notifications",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFn(configDir, healthAddr)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yml")
	rootCmd.PersistentFlags().StringVar(&healthAddr, "health-addr", ":8081", "listen address for health and metrics, empty to disable")
	return rootCmd
}

func run(configDir, healthAddr string) error {
	var (
		cfg *config.Config
		err error
	)
	if configDir != "" {
		cfg, err = config.LoadConfig(configDir)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l := app.NewLogger(cfg.Log).With("worker")

	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("the standalone worker needs a shared database, got driver %q", cfg.Database.Driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := app.OpenRepositories(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeRepos()

	client, err := app.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if client != nil {
		defer client.Close()
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(cfg.Server.MetricsPrefix, registry)

	w, err := app.NewWorker(cfg, repos, client, m, l)
	if err != nil {
		return err
	}
	defer w.Close()

	if healthAddr != "" {
		srv := healthServer(healthAddr, repos.Pinger, registry, l)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	l.Info("Worker started")
	err = w.Run(ctx)
	l.Info("Worker stopped")
	return err
}

func healthServer(addr string, db health.Pinger, registry *prometheus.Registry, l *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error(err, "Health check server failed")
		}
	}()
	return srv
}
