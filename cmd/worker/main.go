package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/shopcore/internal/app"
	"github.com/felixgeelhaar/shopcore/pkg/config"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.Info("starting shop worker", "local_mode", cfg.IsLocalMode())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewPrometheusMetrics()

	container, err := app.New(ctx, cfg, logger, app.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer container.Close()

	// Local mode builds its worker with the container.
	worker := container.Worker
	if worker == nil {
		worker, err = container.NewWorker()
		if err != nil {
			return err
		}
		defer func() {
			if err := worker.Close(); err != nil {
				logger.Warn("error closing worker", "error", err)
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(ctx) })

	if cfg.WorkerHealthAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthMux(container, worker, metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func healthMux(container *app.Container, worker *app.Worker, metrics *observability.PrometheusMetrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"status": "ok",
			"tasks":  worker.Runner.Names(),
			"checks": container.Health.Names(),
		}
		if worker.Outbox != nil {
			stats := worker.Outbox.GetStats()
			response["outbox"] = map[string]any{
				"running":           stats.IsRunning,
				"published":         stats.PublishedCount,
				"failed":            stats.FailedCount,
				"dead":              stats.DeadCount,
				"last_processed_at": stats.LastProcessedAt,
				"last_error":        stats.LastError,
			}
		}
		writeJSON(w, http.StatusOK, response)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		health := container.Health.GetOverallHealth(checkCtx)
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.ServiceName = "shop-worker"
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	logger := observability.NewLogger(logCfg)
	slog.SetDefault(logger)
	return logger
}
