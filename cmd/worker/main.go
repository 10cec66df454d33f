package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/dist-job-scheduler/config"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker/samples"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/health"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/dist-job-scheduler/internal/log"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/metrics"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	healthChecker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	registry := checker.NewRegistry()
	samples.RegisterAll(registry)

	client, err := checker.NewBoundedClient(checker.BoundedClientConfig{
		MaxResponseBodyBytes:     cfg.MaxResponseBodyBytes,
		MaxJSONResponseBodyBytes: cfg.MaxJSONResponseBodyBytes,
		UserAgent:                cfg.UserAgent,
		DefaultTimeout:           time.Duration(cfg.DefaultHTTPTimeoutSeconds) * time.Second,
	})
	if err != nil {
		stop()
		log.Fatalf("bounded client: %v", err)
	}

	jobRepo := postgres.NewCheckJobRepository(pool, logger)

	worker := scheduler.NewWorker(scheduler.WorkerConfig{
		JobRepo:               jobRepo,
		CheckRepo:             postgres.NewCheckRepository(pool),
		RunRepo:               postgres.NewCheckRunRepository(pool),
		SnapshotRepo:          postgres.NewServiceSnapshotRepository(pool),
		ServiceRepo:           postgres.NewServiceRepository(pool),
		IncidentRepo:          postgres.NewIncidentRepository(pool),
		Registry:              registry,
		Client:                client,
		PollInterval:          time.Duration(cfg.WorkerPollSeconds) * time.Second,
		LeaseSeconds:          cfg.WorkerLeaseSeconds,
		MaxAttempts:           cfg.WorkerMaxAttempts,
		BatchSize:             cfg.WorkerBatchSize,
		GlobalConcurrency:     int64(cfg.WorkerConcurrency),
		PerServiceConcurrency: int64(cfg.PerServiceConcurrency),
	}, logger)
	go worker.Start(ctx)

	reaper := scheduler.NewReaper(
		jobRepo,
		logger,
		time.Duration(cfg.ReaperIntervalSeconds)*time.Second,
		cfg.WorkerLeaseSeconds,
		cfg.WorkerBatchSize,
	)
	go reaper.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, healthChecker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("worker shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
