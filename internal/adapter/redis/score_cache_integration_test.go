package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdityaP700/Sentimatrix/internal/adapter/metrics"
	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

func newTestCache(t *testing.T) (*ScoreCache, *metrics.RedisMetrics) {
	t.Helper()
	m := metrics.NewRedisMetrics(prometheus.NewRegistry())
	breaker := NewCircuitBreakerHook(DefaultBreakerSettings, m)
	client := setupTestClient(t, NewMetricsHook(m), breaker)

	return NewScoreCache(client, breaker, ScoreCacheConfig{
		TTL:             7 * 24 * time.Hour,
		OpTimeout:       time.Second,
		RetryAttempts:   2,
		RetryBackoff:    5 * time.Millisecond,
		AnalyzerVersion: "lexicon-v1",
	}), m
}

func TestScoreCache_PutThenGet(t *testing.T) {
	cache, m := newTestCache(t)
	ctx := context.Background()
	computedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, domain.CacheMiss, cache.Get(ctx, "abc").State)

	state := cache.Put(ctx, "abc", domain.CachedScore{Score: 0.6249, AnalyzerVersion: "lexicon-v1", ComputedAt: computedAt})
	require.Equal(t, domain.CacheStored, state)

	lookup := cache.Get(ctx, "abc")
	require.Equal(t, domain.CacheHit, lookup.State)
	assert.InDelta(t, 0.6249, lookup.Entry.Score, 1e-9)
	assert.True(t, computedAt.Equal(lookup.Entry.ComputedAt))

	assert.Positive(t, testutil.ToFloat64(m.OpsTotal.WithLabelValues("set", "success")))
	assert.Positive(t, testutil.ToFloat64(m.OpsTotal.WithLabelValues("get", "success")))
}

func TestScoreCache_KeyAndTTL(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.Equal(t, domain.CacheStored, cache.Put(ctx, "deadbeef", domain.CachedScore{Score: -0.2, AnalyzerVersion: "lexicon-v1"}))

	ttl, err := cache.rdb.TTL(ctx, "sentiment:deadbeef").Result()
	require.NoError(t, err)
	assert.Greater(t, int64(ttl), int64(7*24*time.Hour-time.Minute))
	assert.LessOrEqual(t, int64(ttl), int64(7*24*time.Hour))
}

func TestScoreCache_AnalyzerVersionMismatchIsMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "abc", domain.CachedScore{Score: 0.9, AnalyzerVersion: "lexicon-v0"})

	assert.Equal(t, domain.CacheMiss, cache.Get(ctx, "abc").State)
}

func TestScoreCache_CorruptEntryIsMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.rdb.Set(ctx, "sentiment:abc", "not-json", time.Minute).Err())

	assert.Equal(t, domain.CacheMiss, cache.Get(ctx, "abc").State)
}

func TestScoreCache_HealthReportsLatencyAndBreaker(t *testing.T) {
	cache, _ := newTestCache(t)

	health := cache.Health(context.Background())

	assert.True(t, health.Healthy)
	assert.Equal(t, "redis", health.Backend)
	assert.Equal(t, "closed", health.BreakerState)
	assert.Greater(t, int64(health.Latency), int64(0))
	assert.Empty(t, health.Error)
}
