package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
	apperrors "github.com/AdityaP700/Sentimatrix/internal/platform/errors"
)

func TestDashboardStats_EmptyStore(t *testing.T) {
	env := newTestEnv(t, nil)

	stats, err := env.svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.ScoredCount)
	assert.Zero(t, stats.AverageScore)
	assert.Equal(t, domain.BandCounts{}, stats.Bands)
	assert.NotNil(t, stats.RecentEmails)
	assert.Empty(t, stats.RecentEmails)
	assert.Equal(t, testNow, stats.LastUpdated)
}

func TestDashboardStats_BandsAndAverage(t *testing.T) {
	env := newTestEnv(t, nil)

	scores := []*float64{ptr(-0.5), ptr(-0.1), ptr(0), ptr(0.1), ptr(0.1001), ptr(0.9), nil, nil}
	for i, s := range scores {
		env.seedScored(t, "body", testNow.Add(time.Duration(i)*time.Minute), s)
	}

	stats, err := env.svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 6, stats.ScoredCount)
	assert.Equal(t, domain.BandCounts{Negative: 1, Neutral: 3, Positive: 2}, stats.Bands)
	assert.Equal(t, stats.ScoredCount, stats.Bands.Sum())
	assert.InDelta(t, (-0.5-0.1+0+0.1+0.1001+0.9)/6, stats.AverageScore, 1e-4)
}

func TestDashboardStats_VisitsEveryRecordOnceAcrossPages(t *testing.T) {
	env := newTestEnv(t, nil)
	for i := range 7 {
		env.seedScored(t, fmt.Sprintf("body %d", i), testNow, ptr(0.5))
	}

	stats, err := env.svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 7, stats.Bands.Positive)
	// Page size 3: pages of 3, 3, 1.
	assert.EqualValues(t, 3, env.repo.listPageCalls.Load())
}

func TestDashboardStats_RecentEmailsNewestWithBody(t *testing.T) {
	env := newTestEnv(t, nil)
	var newest []uuid.UUID
	for i := range 8 {
		e := env.seedScored(t, fmt.Sprintf("body %d", i), testNow.Add(time.Duration(i)*time.Hour), ptr(0.3))
		newest = append([]uuid.UUID{e.ID}, newest...)
	}
	env.seedScored(t, "   ", testNow.Add(48*time.Hour), nil)

	stats, err := env.svc.DashboardStats(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.RecentEmails, recentEmailsLimit)
	for i, summary := range stats.RecentEmails {
		assert.Equal(t, newest[i], summary.ID)
		assert.Equal(t, domain.BandPositive, summary.Band)
	}
}

func TestDashboardStats_SnapshotReusedUntilTTL(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedScored(t, "body", testNow, ptr(0.5))
	ctx := context.Background()

	first, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Total)

	env.seedScored(t, "another", testNow, nil)
	env.clock.Advance(testConfig.DashboardTTL - time.Second)

	cached, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Total)

	env.clock.Advance(time.Second)

	fresh, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Total)
}

func TestDashboardStats_InvalidatedByLocalWrites(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)

	email := env.create(t, "Subject", "Fantastic support!", testNow)

	afterCreate, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, afterCreate.Total)
	assert.Zero(t, afterCreate.ScoredCount)

	_, err = env.svc.AnalyzeBatch(ctx, []string{email.ID.String()})
	require.NoError(t, err)

	afterAnalyze, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, afterAnalyze.ScoredCount)
	assert.Equal(t, 1, afterAnalyze.Bands.Positive)
}

type countingPublisher struct {
	calls atomic.Int32
}

func (p *countingPublisher) PublishEmailsChanged(context.Context) { p.calls.Add(1) }

func TestLocalWritesPublishChanges(t *testing.T) {
	env := newTestEnv(t, nil)
	pub := &countingPublisher{}
	env.svc.SetChangePublisher(pub)
	ctx := context.Background()

	email := env.create(t, "Subject", "Thanks a lot", testNow)
	assert.Equal(t, int32(1), pub.calls.Load())

	_, err := env.svc.AnalyzeBatch(ctx, []string{email.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int32(2), pub.calls.Load())

	_, err = env.svc.AnalyzeBatch(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), pub.calls.Load(), "rejected batches change nothing")
}

func TestInvalidateDashboard_DropsSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedScored(t, "body", testNow, ptr(0.5))
	ctx := context.Background()

	_, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)

	// A write another instance made, visible only through the shared store.
	env.seedScored(t, "remote", testNow, ptr(-0.5))

	cached, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Total)

	env.svc.InvalidateDashboard()

	fresh, err := env.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Total)
	assert.Equal(t, 1, fresh.Bands.Negative)
}

func TestDashboardStats_StoreError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.repo.listPageFn = func(context.Context, uuid.UUID, int) ([]domain.Email, error) {
		return nil, errors.New("connection refused")
	}

	_, err := env.svc.DashboardStats(context.Background())

	assert.Equal(t, apperrors.TypeExternal, apperrors.AsStructuredError(err).Type)
}

func TestDashboardStats_CancelledCallerDoesNotFailSharedScan(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedScored(t, "body", testNow, ptr(0.5))

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env.repo.listPageFn = func(ctx context.Context, after uuid.UUID, limit int) ([]domain.Email, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return env.repo.EmailStore.ListPage(ctx, after, limit)
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := env.svc.DashboardStats(firstCtx)
		firstErr <- err
	}()
	<-started

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		stats domain.DashboardStats
		err   error
	}
	second := make(chan result, 1)
	go func() {
		stats, err := env.svc.DashboardStats(context.Background())
		second <- result{stats, err}
	}()
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.stats.Total)
	assert.Equal(t, 1, res.stats.Bands.Positive)
	// The second caller joined the scan still in flight instead of starting its own.
	assert.EqualValues(t, 1, env.repo.listPageCalls.Load())
}

func TestSentimentTrend_DailyBuckets(t *testing.T) {
	env := newTestEnv(t, nil)
	day := func(d int, h int) time.Time { return testNow.AddDate(0, 0, -d).Add(time.Duration(h) * time.Hour) }

	env.seedScored(t, "a", day(1, -2), ptr(0.2))
	env.seedScored(t, "b", day(1, -1), ptr(0.4))
	env.seedScored(t, "c", day(3, 0), ptr(-0.6))
	env.seedScored(t, "d", day(2, 0), nil)
	env.seedScored(t, "e", day(20, 0), ptr(0.9))

	points, err := env.svc.SentimentTrend(context.Background(), "1w")
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-06-12", points[0].Date)
	assert.InDelta(t, -0.6, points[0].AverageScore, 1e-9)
	assert.Equal(t, 1, points[0].Count)
	assert.Equal(t, "2024-06-14", points[1].Date)
	assert.InDelta(t, 0.3, points[1].AverageScore, 1e-9)
	assert.Equal(t, 2, points[1].Count)

	month, err := env.svc.SentimentTrend(context.Background(), "1M")
	require.NoError(t, err)
	assert.Len(t, month, 3)
}

func TestSentimentTrend_InvalidPeriod(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.SentimentTrend(context.Background(), "2Y")

	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}
