package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds every tunable from spec §6, loaded the way the teacher
// loads its own: env vars via caarlos0/env, validated via go-playground/validator.
type Config struct {
	Env         string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`

	// HTTP egress (§6.2)
	DefaultHTTPTimeoutSeconds int    `env:"DEFAULT_HTTP_TIMEOUT_SECONDS" envDefault:"10" validate:"min=1,max=120"`
	UserAgent                 string `env:"USER_AGENT" envDefault:"is-it-down-checker/1.0"`
	MaxResponseBodyBytes      int    `env:"MAX_RESPONSE_BODY_BYTES" envDefault:"1048576" validate:"min=1024"`
	MaxJSONResponseBodyBytes  int    `env:"MAX_JSON_RESPONSE_BODY_BYTES" envDefault:"262144" validate:"min=1024"`

	// Scheduler (§4.4)
	SchedulerTickSeconds int `env:"SCHEDULER_TICK_SECONDS" envDefault:"5" validate:"min=1,max=300"`
	SchedulerBatchSize   int `env:"SCHEDULER_BATCH_SIZE" envDefault:"100" validate:"min=1,max=10000"`

	// Worker (§4.5-4.6)
	WorkerBatchSize       int `env:"WORKER_BATCH_SIZE" envDefault:"20" validate:"min=1,max=1000"`
	WorkerLeaseSeconds    int `env:"WORKER_LEASE_SECONDS" envDefault:"60" validate:"min=5,max=3600"`
	WorkerPollSeconds     int `env:"WORKER_POLL_SECONDS" envDefault:"2" validate:"min=1,max=60"`
	WorkerMaxAttempts     int `env:"WORKER_MAX_ATTEMPTS" envDefault:"5" validate:"min=1,max=20"`
	WorkerConcurrency     int `env:"WORKER_CONCURRENCY" envDefault:"20" validate:"min=1,max=1000"`
	PerServiceConcurrency int `env:"PER_SERVICE_CONCURRENCY" envDefault:"2" validate:"min=1,max=100"`
	CheckerConcurrency    int `env:"CHECKER_CONCURRENCY" envDefault:"8" validate:"min=1,max=100"`

	// ReaperIntervalSeconds controls the belt-and-suspenders sweep
	// (SPEC_FULL §4.6) — ambient like the teacher's own reaper interval,
	// not a spec.md field.
	ReaperIntervalSeconds int `env:"REAPER_INTERVAL_SECONDS" envDefault:"30" validate:"min=5,max=600"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel converts the LOG_LEVEL string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
