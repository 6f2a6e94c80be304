package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	StoreBackend   string        `env:"STORE_BACKEND" default:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DBMaxConns     int           `env:"DB_MAX_CONNS" default:"0"` // 0 keeps the pgx default
	StoreOpTimeout time.Duration `env:"STORE_OP_TIMEOUT" default:"2s"`

	CacheBackend       string        `env:"CACHE_BACKEND" default:"redis"`
	RedisURL           string        `env:"REDIS_URL"`
	CacheTTL           time.Duration `env:"CACHE_TTL" default:"168h"` // 7 days
	CacheOpTimeout     time.Duration `env:"CACHE_OP_TIMEOUT" default:"250ms"`
	CacheRetryAttempts int           `env:"CACHE_RETRY_ATTEMPTS" default:"2"`
	CacheRetryBackoff  time.Duration `env:"CACHE_RETRY_BACKOFF" default:"25ms"`

	AnalysisConcurrency int `env:"ANALYSIS_CONCURRENCY" default:"6"`
	AnalysisMaxBatch    int `env:"ANALYSIS_MAX_BATCH" default:"100"`

	DashboardPageSize int           `env:"DASHBOARD_PAGE_SIZE" default:"500"`
	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" default:"5s"`

	AnalyzeRateLimit float64 `env:"ANALYZE_RATE_LIMIT" default:"5"`
	AnalyzeRateBurst int     `env:"ANALYZE_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=%s", StoreBackendPostgres)
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of %q, %q", StoreBackendPostgres, StoreBackendMemory)
	}

	switch cfg.CacheBackend {
	case CacheBackendRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=%s", CacheBackendRedis)
		}
	case CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of %q, %q, %q", CacheBackendRedis, CacheBackendMemory, CacheBackendNone)
	}

	// Checked in declaration order so the first invalid setting is always the one reported.
	positive := []struct {
		name  string
		value int
	}{
		{"CACHE_RETRY_ATTEMPTS", cfg.CacheRetryAttempts},
		{"ANALYSIS_CONCURRENCY", cfg.AnalysisConcurrency},
		{"ANALYSIS_MAX_BATCH", cfg.AnalysisMaxBatch},
		{"DASHBOARD_PAGE_SIZE", cfg.DashboardPageSize},
		{"ANALYZE_RATE_BURST", cfg.AnalyzeRateBurst},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%s must be at least 1", p.name)
		}
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"STORE_OP_TIMEOUT", cfg.StoreOpTimeout},
		{"CACHE_OP_TIMEOUT", cfg.CacheOpTimeout},
		{"CACHE_TTL", cfg.CacheTTL},
	}
	for _, d := range timeouts {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	if cfg.DBMaxConns < 0 {
		return fmt.Errorf("DB_MAX_CONNS must not be negative")
	}

	if cfg.DashboardCacheTTL < 0 {
		return fmt.Errorf("DASHBOARD_CACHE_TTL must not be negative")
	}

	return nil
}
