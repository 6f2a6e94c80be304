package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"

	"github.com/AdityaP700/Sentimatrix/internal/adapter/metrics"
	"github.com/AdityaP700/Sentimatrix/internal/domain"
	"github.com/AdityaP700/Sentimatrix/internal/platform/retry"
)

const (
	backendName = "redis"
	keyPrefix   = "sentiment:"
)

type ScoreCacheConfig struct {
	TTL             time.Duration
	OpTimeout       time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration
	AnalyzerVersion string
	Metrics         *metrics.RedisMetrics // optional; counts retries
}

type breakerState interface {
	State() string
}

// ScoreCache stores analyzer results in Redis under sentiment:<fingerprint>.
// Every call is bounded by OpTimeout including its retries; any failure is
// reported as domain.CacheUnavailable.
type ScoreCache struct {
	rdb     goredis.UniversalClient
	breaker breakerState
	cfg     ScoreCacheConfig
}

var _ domain.ScoreCache = (*ScoreCache)(nil)

// NewScoreCache wraps rdb. breaker may be nil when no circuit breaker hook is installed.
func NewScoreCache(rdb goredis.UniversalClient, breaker *CircuitBreakerHook, cfg ScoreCacheConfig) *ScoreCache {
	c := &ScoreCache{rdb: rdb, cfg: cfg}
	if breaker != nil {
		c.breaker = breaker
	}
	if c.cfg.RetryAttempts < 1 {
		c.cfg.RetryAttempts = 1
	}
	return c
}

func scoreKey(fingerprint string) string {
	return keyPrefix + fingerprint
}

func (c *ScoreCache) Get(ctx context.Context, fingerprint string) domain.CacheLookup {
	data, err := withRetry(ctx, c, "get", func(ctx context.Context) ([]byte, error) {
		return c.rdb.Get(ctx, scoreKey(fingerprint)).Bytes()
	})
	if errors.Is(err, goredis.Nil) {
		return domain.CacheLookup{State: domain.CacheMiss}
	}
	if err != nil {
		slog.WarnContext(ctx, "Score cache GET failed", "fingerprint", fingerprint, "error", err)
		return domain.CacheLookup{State: domain.CacheUnavailable}
	}

	var entry domain.CachedScore
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.WarnContext(ctx, "Discarding undecodable score cache entry", "fingerprint", fingerprint, "error", err)
		return domain.CacheLookup{State: domain.CacheMiss}
	}
	if entry.AnalyzerVersion != c.cfg.AnalyzerVersion {
		return domain.CacheLookup{State: domain.CacheMiss}
	}

	return domain.CacheLookup{State: domain.CacheHit, Entry: entry}
}

func (c *ScoreCache) Put(ctx context.Context, fingerprint string, entry domain.CachedScore) domain.CacheState {
	encoded, err := json.Marshal(entry)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode score cache entry", "fingerprint", fingerprint, "error", err)
		return domain.CacheUnavailable
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	err = retry.DoVoid(opCtx, c.retryPolicy(opCtx, "set"), classify, func() error {
		return c.rdb.Set(opCtx, scoreKey(fingerprint), encoded, c.cfg.TTL).Err()
	})
	if err != nil {
		slog.WarnContext(ctx, "Score cache SET failed", "fingerprint", fingerprint, "error", err)
		return domain.CacheUnavailable
	}
	return domain.CacheStored
}

func (c *ScoreCache) Health(ctx context.Context) domain.CacheHealth {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	health := domain.CacheHealth{Backend: backendName}
	if c.breaker != nil {
		health.BreakerState = c.breaker.State()
	}

	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	health.Latency = time.Since(start)

	if err != nil {
		health.Error = err.Error()
		return health
	}
	health.Healthy = true
	return health
}

// withRetry runs op under the cache's timeout budget, retrying transient
// network errors only.
func withRetry[T any](ctx context.Context, c *ScoreCache, operation string, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	return retry.Do(ctx, c.retryPolicy(ctx, operation), classify, func() (T, error) {
		return op(ctx)
	})
}

func (c *ScoreCache) retryPolicy(ctx context.Context, operation string) retry.Policy {
	return retry.Policy{
		MaxAttempts:    c.cfg.RetryAttempts,
		InitialBackoff: c.cfg.RetryBackoff,
		MaxBackoff:     c.cfg.OpTimeout,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.DebugContext(ctx, "Retrying score cache operation",
				"operation", operation, "attempt", attempt, "backoff", backoff, "error", err)
			if c.cfg.Metrics != nil {
				c.cfg.Metrics.CacheRetries.WithLabelValues(operation).Inc()
			}
		},
	}
}

func classify(err error) retry.Action {
	switch {
	case errors.Is(err, goredis.Nil),
		errors.Is(err, circuitbreaker.ErrOpen),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return retry.Stop
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return retry.Stop
	}
	return retry.Retry
}
