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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/AdityaP700/Sentimatrix/internal/adapter/httpserver"
	"github.com/AdityaP700/Sentimatrix/internal/adapter/memory"
	"github.com/AdityaP700/Sentimatrix/internal/adapter/metrics"
	"github.com/AdityaP700/Sentimatrix/internal/adapter/postgres"
	"github.com/AdityaP700/Sentimatrix/internal/adapter/redis"
	"github.com/AdityaP700/Sentimatrix/internal/app"
	"github.com/AdityaP700/Sentimatrix/internal/domain"
	"github.com/AdityaP700/Sentimatrix/internal/platform/config"
	"github.com/AdityaP700/Sentimatrix/internal/platform/logging"
	"github.com/AdityaP700/Sentimatrix/internal/platform/version"
	"github.com/AdityaP700/Sentimatrix/internal/sentiment"
)

const (
	startupTimeout       = 30 * time.Second
	shutdownTimeout      = 10 * time.Second
	memoryEvictionPeriod = time.Minute
)

// closer collects cleanup functions and runs them in reverse order.
type closer []func()

func (c *closer) add(fn func()) { *c = append(*c, fn) }

func (c closer) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) *pgxpool.Pool {
	tracer := postgres.NewMetricsTracer(metrics.NewDBMetrics(reg))

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		Tracer:   tracer,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupStore(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, cleanup *closer) domain.EmailRepository {
	if cfg.StoreBackend == config.StoreBackendMemory {
		slog.Warn("Using in-memory record store; data is lost on restart")
		return memory.NewEmailStore()
	}

	pool := setupDB(ctx, cfg, reg)
	cleanup.add(pool.Close)
	return postgres.NewEmailRepo(pool)
}

func setupRedis(cfg *config.Config, reg prometheus.Registerer) (*goredis.Client, *redis.CircuitBreakerHook, *metrics.RedisMetrics) {
	redisMetrics := metrics.NewRedisMetrics(reg)
	breaker := redis.NewCircuitBreakerHook(redis.DefaultBreakerSettings, redisMetrics)

	// The metrics hook sits outside the breaker so fast-failed calls are counted too.
	client, err := redis.Open(cfg.RedisURL, redis.NewMetricsHook(redisMetrics), breaker)
	if err != nil {
		slog.Error("Failed to configure Redis", "error", err)
		os.Exit(1)
	}
	return client, breaker, redisMetrics
}

// setupCache returns the score cache and, for the redis backend, the client
// so it can be shared with the dashboard invalidator.
func setupCache(ctx context.Context, cfg *config.Config, analyzerVersion string, clock clockwork.Clock, reg prometheus.Registerer, cleanup *closer) (domain.ScoreCache, *goredis.Client) {
	var (
		cache  domain.ScoreCache
		client *goredis.Client
	)

	switch cfg.CacheBackend {
	case config.CacheBackendNone:
		slog.Warn("Score cache disabled; every analysis recomputes")
		return memory.DisabledCache{}, nil
	case config.CacheBackendMemory:
		memCache := memory.NewScoreCache(cfg.CacheTTL, analyzerVersion, clock)
		cleanup.add(memCache.StartEvictionTimer(memoryEvictionPeriod))
		cache = memCache
	default:
		var (
			breaker      *redis.CircuitBreakerHook
			redisMetrics *metrics.RedisMetrics
		)
		client, breaker, redisMetrics = setupRedis(cfg, reg)
		cleanup.add(func() { _ = client.Close() })
		cache = redis.NewScoreCache(client, breaker, redis.ScoreCacheConfig{
			TTL:             cfg.CacheTTL,
			OpTimeout:       cfg.CacheOpTimeout,
			RetryAttempts:   cfg.CacheRetryAttempts,
			RetryBackoff:    cfg.CacheRetryBackoff,
			AnalyzerVersion: analyzerVersion,
			Metrics:         redisMetrics,
		})
	}

	if health := cache.Health(ctx); !health.Healthy {
		slog.Warn("Score cache unavailable at startup, continuing in degraded mode",
			"backend", health.Backend, "error", health.Error)
	}
	return cache, client
}

// startInvalidator shares dashboard invalidations between instances that use
// the same Redis. The returned func stops the subscription.
func startInvalidator(client *goredis.Client, cfg *config.Config, appSvc *app.Service) func() {
	instanceID := uuid.NewString()
	inv := redis.NewDashboardInvalidator(client, instanceID, cfg.CacheOpTimeout, appSvc.InvalidateDashboard)
	appSvc.SetChangePublisher(inv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		inv.Start(ctx)
	}()

	slog.Info("Dashboard invalidation subscribed", "instance_id", instanceID)
	return func() {
		cancel()
		<-done
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	info := version.Get()
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", info.Version,
		"commit", info.Commit,
		"store", cfg.StoreBackend,
		"cache", cfg.CacheBackend,
	)

	reg := metrics.NewRegistry()

	var cleanup closer
	defer cleanup.run()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	analyzer := sentiment.NewLexiconAnalyzer()
	emails := setupStore(startupCtx, cfg, reg, &cleanup)
	cache, redisClient := setupCache(startupCtx, cfg, analyzer.Version(), clock, reg, &cleanup)

	observer := metrics.NewAnalysisMetrics(reg, metrics.NewCacheMetrics(reg))
	appSvc := app.NewService(emails, cache, analyzer, observer, clock, app.Config{
		StoreTimeout:      cfg.StoreOpTimeout,
		Concurrency:       cfg.AnalysisConcurrency,
		MaxBatch:          cfg.AnalysisMaxBatch,
		DashboardPageSize: cfg.DashboardPageSize,
		DashboardTTL:      cfg.DashboardCacheTTL,
	})

	if redisClient != nil {
		cleanup.add(startInvalidator(redisClient, cfg, appSvc))
	}

	healthChecks := []httpserver.HealthCheck{
		{Name: "store", Check: appSvc.CheckStore},
	}
	srv := httpserver.NewServer(cfg, appSvc, metrics.NewHTTPMetrics(reg), metrics.Handler(reg), healthChecks)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		cleanup.run()
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
