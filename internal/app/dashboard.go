package app

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
	apperrors "github.com/AdityaP700/Sentimatrix/internal/platform/errors"
)

const recentEmailsLimit = 5

// trendPeriods maps the accepted period codes to their look-back window.
var trendPeriods = map[string]time.Duration{
	"1D": 24 * time.Hour,
	"5D": 5 * 24 * time.Hour,
	"1W": 7 * 24 * time.Hour,
	"1M": 30 * 24 * time.Hour,
}

// snapshot holds the last dashboard computation. generation changes on
// every invalidation so a computation that raced with a write is not stored.
type snapshot struct {
	mu         sync.Mutex
	stats      *domain.DashboardStats
	takenAt    time.Time
	generation uint64
}

func (s *snapshot) get(now time.Time, ttl time.Duration) (*domain.DashboardStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil || ttl <= 0 || now.Sub(s.takenAt) >= ttl {
		return nil, false
	}
	return s.stats, true
}

func (s *snapshot) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *snapshot) store(stats *domain.DashboardStats, takenAt time.Time, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.stats = stats
	s.takenAt = takenAt
}

func (s *snapshot) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.stats = nil
}

// DashboardStats aggregates every stored email. The result is a best-effort
// snapshot: records written during the scan may or may not be included.
func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	if stats, ok := s.dashboard.get(s.clock.Now(), s.cfg.DashboardTTL); ok {
		return *stats, nil
	}

	// The scan is shared by every waiting caller, so it must outlive any one
	// caller's context. Each page is still bounded by the store timeout.
	computeCtx := context.WithoutCancel(ctx)
	ch := s.dashboardGroup.DoChan("stats", func() (any, error) {
		generation := s.dashboard.currentGeneration()
		stats, err := s.computeDashboard(computeCtx)
		if err != nil {
			return nil, err
		}
		s.dashboard.store(stats, s.clock.Now(), generation)
		return stats, nil
	})

	select {
	case <-ctx.Done():
		return domain.DashboardStats{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.DashboardStats{}, apperrors.ExternalError("failed to compute dashboard stats", res.Err)
		}
		return *res.Val.(*domain.DashboardStats), nil
	}
}

// computeDashboard walks the store with keyset pagination so each record is
// visited exactly once regardless of concurrent inserts.
func (s *Service) computeDashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}
	var sum float64
	recent := make([]domain.Email, 0, recentEmailsLimit+1)

	after := uuid.Nil
	for {
		page, err := s.listPage(ctx, after)
		if err != nil {
			return nil, err
		}

		for i := range page {
			email := &page[i]
			stats.Total++
			if email.SentimentScore != nil {
				stats.ScoredCount++
				sum += *email.SentimentScore
				stats.Bands.Add(domain.ClassifyScore(*email.SentimentScore))
			}
			if strings.TrimSpace(email.Body) != "" {
				recent = pushRecent(recent, *email)
			}
		}

		if len(page) < s.cfg.DashboardPageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	if stats.ScoredCount > 0 {
		stats.AverageScore = round4(sum / float64(stats.ScoredCount))
	}
	stats.RecentEmails = summarize(recent)
	stats.LastUpdated = s.clock.Now().UTC()
	return stats, nil
}

func (s *Service) listPage(ctx context.Context, after uuid.UUID) ([]domain.Email, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	page, err := s.emails.ListPage(storeCtx, after, s.cfg.DashboardPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to scan emails after %s: %w", after, err)
	}
	return page, nil
}

// pushRecent keeps the newest recentEmailsLimit emails, newest first.
func pushRecent(recent []domain.Email, email domain.Email) []domain.Email {
	i, _ := slices.BinarySearchFunc(recent, email, newestFirst)
	if i >= recentEmailsLimit {
		return recent
	}
	recent = slices.Insert(recent, i, email)
	if len(recent) > recentEmailsLimit {
		recent = recent[:recentEmailsLimit]
	}
	return recent
}

func newestFirst(a, b domain.Email) int {
	if c := b.SentAt.Compare(a.SentAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID.String(), a.ID.String())
}

func summarize(emails []domain.Email) []domain.EmailSummary {
	out := make([]domain.EmailSummary, 0, len(emails))
	for _, e := range emails {
		summary := domain.EmailSummary{
			ID:      e.ID,
			Subject: e.Subject,
			Sender:  e.Sender,
			Score:   e.SentimentScore,
			Time:    e.SentAt,
		}
		if band, ok := e.Band(); ok {
			summary.Band = band
		}
		out = append(out, summary)
	}
	return out
}

// SentimentTrend returns daily averages of scored emails over period
// (1D, 5D, 1W or 1M), oldest day first.
func (s *Service) SentimentTrend(ctx context.Context, period string) ([]domain.TrendPoint, error) {
	period = strings.ToUpper(strings.TrimSpace(period))
	window, ok := trendPeriods[period]
	if !ok {
		return nil, apperrors.ValidationError("period must be one of 1D, 5D, 1W, 1M").WithField("period", period)
	}

	now := s.clock.Now().UTC()
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	emails, err := s.emails.List(storeCtx, domain.EmailFilter{From: now.Add(-window), To: now})
	if err != nil {
		return nil, apperrors.ExternalError("failed to load emails for trend", err)
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	for _, e := range emails {
		if e.SentimentScore == nil {
			continue
		}
		day := e.SentAt.UTC().Format(time.DateOnly)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += *e.SentimentScore
		b.count++
	}

	points := make([]domain.TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		points = append(points, domain.TrendPoint{
			Date:         day,
			AverageScore: round4(b.sum / float64(b.count)),
			Count:        b.count,
		})
	}
	slices.SortFunc(points, func(a, b domain.TrendPoint) int { return strings.Compare(a.Date, b.Date) })
	return points, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
