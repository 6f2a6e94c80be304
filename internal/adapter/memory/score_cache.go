package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

const backendName = "memory"

// ScoreCache is a TTL map keyed by content fingerprint.
type ScoreCache struct {
	mu              sync.RWMutex
	entries         map[string]scoreEntry
	ttl             time.Duration
	analyzerVersion string
	clock           clockwork.Clock
}

type scoreEntry struct {
	score     domain.CachedScore
	expiresAt time.Time
}

var _ domain.ScoreCache = (*ScoreCache)(nil)

func NewScoreCache(ttl time.Duration, analyzerVersion string, clock clockwork.Clock) *ScoreCache {
	return &ScoreCache{
		entries:         make(map[string]scoreEntry),
		ttl:             ttl,
		analyzerVersion: analyzerVersion,
		clock:           clock,
	}
}

func (c *ScoreCache) Get(_ context.Context, fingerprint string) domain.CacheLookup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[fingerprint]
	if !ok || !c.clock.Now().Before(entry.expiresAt) || entry.score.AnalyzerVersion != c.analyzerVersion {
		return domain.CacheLookup{State: domain.CacheMiss}
	}
	return domain.CacheLookup{State: domain.CacheHit, Entry: entry.score}
}

func (c *ScoreCache) Put(_ context.Context, fingerprint string, score domain.CachedScore) domain.CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = scoreEntry{score: score, expiresAt: c.clock.Now().Add(c.ttl)}
	return domain.CacheStored
}

func (c *ScoreCache) Health(context.Context) domain.CacheHealth {
	return domain.CacheHealth{Healthy: true, Backend: backendName}
}

func (c *ScoreCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ScoreCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer periodically drops expired entries. The returned
// function stops the timer.
func (c *ScoreCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.evictExpired(); evicted > 0 {
					slog.Debug("Evicted expired score cache entries", "count", evicted, "remaining", c.size())
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ErrCacheDisabled is reported by DisabledCache health checks.
var ErrCacheDisabled = errors.New("score cache disabled")

// DisabledCache stands in when no cache backend is configured. Every
// lookup is unavailable, so analysis always computes.
type DisabledCache struct{}

var _ domain.ScoreCache = DisabledCache{}

func (DisabledCache) Get(context.Context, string) domain.CacheLookup {
	return domain.CacheLookup{State: domain.CacheUnavailable}
}

func (DisabledCache) Put(context.Context, string, domain.CachedScore) domain.CacheState {
	return domain.CacheUnavailable
}

func (DisabledCache) Health(context.Context) domain.CacheHealth {
	return domain.CacheHealth{Backend: "none", Error: ErrCacheDisabled.Error()}
}
