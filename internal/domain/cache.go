package domain

import (
	"context"
	"time"
)

// CacheState is the tagged outcome of a cache call. Callers treat
// CacheUnavailable exactly like CacheMiss; it is never surfaced as an error.
type CacheState int

const (
	CacheMiss CacheState = iota
	CacheHit
	CacheStored
	CacheUnavailable
)

func (s CacheState) String() string {
	switch s {
	case CacheMiss:
		return "miss"
	case CacheHit:
		return "hit"
	case CacheStored:
		return "stored"
	case CacheUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// CachedScore is the value held for a content fingerprint.
type CachedScore struct {
	Score           float64   `json:"score"`
	AnalyzerVersion string    `json:"analyzer_version"`
	ComputedAt      time.Time `json:"computed_at"`
}

// CacheLookup is the result of ScoreCache.Get. Entry is set only on CacheHit.
type CacheLookup struct {
	State CacheState
	Entry CachedScore
}

// CacheHealth is the liveness report of the cache layer.
type CacheHealth struct {
	Healthy      bool
	Backend      string
	Latency      time.Duration
	BreakerState string
	Error        string
}

// ScoreCache holds previously computed scores keyed by content fingerprint.
// None of its methods return errors: an unreachable cache yields CacheUnavailable.
type ScoreCache interface {
	Get(ctx context.Context, fingerprint string) CacheLookup
	Put(ctx context.Context, fingerprint string, entry CachedScore) CacheState
	Health(ctx context.Context) CacheHealth
}
