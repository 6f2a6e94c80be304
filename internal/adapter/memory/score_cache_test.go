package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

func TestScoreCache_PutGet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewScoreCache(time.Hour, "lexicon-v1", clock)
	ctx := context.Background()

	assert.Equal(t, domain.CacheMiss, cache.Get(ctx, "fp").State)

	state := cache.Put(ctx, "fp", domain.CachedScore{Score: 0.3, AnalyzerVersion: "lexicon-v1"})
	assert.Equal(t, domain.CacheStored, state)

	lookup := cache.Get(ctx, "fp")
	require.Equal(t, domain.CacheHit, lookup.State)
	assert.InDelta(t, 0.3, lookup.Entry.Score, 1e-9)
}

func TestScoreCache_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewScoreCache(time.Hour, "lexicon-v1", clock)
	ctx := context.Background()

	cache.Put(ctx, "fp", domain.CachedScore{Score: 0.3, AnalyzerVersion: "lexicon-v1"})
	clock.Advance(59 * time.Minute)
	assert.Equal(t, domain.CacheHit, cache.Get(ctx, "fp").State)

	clock.Advance(time.Minute)
	assert.Equal(t, domain.CacheMiss, cache.Get(ctx, "fp").State)
}

func TestScoreCache_VersionMismatchIsMiss(t *testing.T) {
	cache := NewScoreCache(time.Hour, "lexicon-v2", clockwork.NewFakeClock())
	ctx := context.Background()

	cache.Put(ctx, "fp", domain.CachedScore{Score: 0.3, AnalyzerVersion: "lexicon-v1"})

	assert.Equal(t, domain.CacheMiss, cache.Get(ctx, "fp").State)
}

func TestScoreCache_EvictionTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewScoreCache(time.Minute, "lexicon-v1", clock)
	ctx := context.Background()
	cache.Put(ctx, "old", domain.CachedScore{AnalyzerVersion: "lexicon-v1"})
	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, cache.size())

	stop := cache.StartEvictionTimer(30 * time.Second)
	defer stop()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(30 * time.Second)

	assert.Eventually(t, func() bool { return cache.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestScoreCache_Healthy(t *testing.T) {
	health := NewScoreCache(time.Minute, "v", clockwork.NewFakeClock()).Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, "memory", health.Backend)
}

func TestDisabledCache_AlwaysUnavailable(t *testing.T) {
	var cache DisabledCache
	ctx := context.Background()

	assert.Equal(t, domain.CacheUnavailable, cache.Get(ctx, "fp").State)
	assert.Equal(t, domain.CacheUnavailable, cache.Put(ctx, "fp", domain.CachedScore{}))

	health := cache.Health(ctx)
	assert.False(t, health.Healthy)
	assert.Equal(t, "none", health.Backend)
}
