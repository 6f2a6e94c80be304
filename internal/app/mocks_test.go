package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/AdityaP700/Sentimatrix/internal/adapter/memory"
	"github.com/AdityaP700/Sentimatrix/internal/domain"
	"github.com/AdityaP700/Sentimatrix/internal/sentiment"
)

// --- Mock implementations ---

// mockEmailRepo delegates to an in-memory store unless a hook overrides the call.
type mockEmailRepo struct {
	*memory.EmailStore

	createFn      func(ctx context.Context, email *domain.Email) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.Email, error)
	updateScoreFn func(ctx context.Context, id uuid.UUID, score float64, analyzedAt time.Time) error
	listPageFn    func(ctx context.Context, after uuid.UUID, limit int) ([]domain.Email, error)
	listFn        func(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error)
	pingFn        func(ctx context.Context) error

	listPageCalls atomic.Int32
}

func newMockEmailRepo() *mockEmailRepo {
	return &mockEmailRepo{EmailStore: memory.NewEmailStore()}
}

func (m *mockEmailRepo) Create(ctx context.Context, email *domain.Email) error {
	if m.createFn != nil {
		return m.createFn(ctx, email)
	}
	return m.EmailStore.Create(ctx, email)
}

func (m *mockEmailRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Email, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return m.EmailStore.GetByID(ctx, id)
}

func (m *mockEmailRepo) UpdateScore(ctx context.Context, id uuid.UUID, score float64, analyzedAt time.Time) error {
	if m.updateScoreFn != nil {
		return m.updateScoreFn(ctx, id, score, analyzedAt)
	}
	return m.EmailStore.UpdateScore(ctx, id, score, analyzedAt)
}

func (m *mockEmailRepo) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]domain.Email, error) {
	m.listPageCalls.Add(1)
	if m.listPageFn != nil {
		return m.listPageFn(ctx, after, limit)
	}
	return m.EmailStore.ListPage(ctx, after, limit)
}

func (m *mockEmailRepo) List(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return m.EmailStore.List(ctx, filter)
}

func (m *mockEmailRepo) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// countingAnalyzer wraps the lexicon analyzer and counts invocations.
type countingAnalyzer struct {
	inner   domain.Analyzer
	calls   atomic.Int32
	analyze func(text string) float64
}

func newCountingAnalyzer() *countingAnalyzer {
	return &countingAnalyzer{inner: sentiment.NewLexiconAnalyzer()}
}

func (a *countingAnalyzer) Analyze(text string) float64 {
	a.calls.Add(1)
	if a.analyze != nil {
		return a.analyze(text)
	}
	return a.inner.Analyze(text)
}

func (a *countingAnalyzer) Version() string { return a.inner.Version() }

type recordingObserver struct {
	mu       sync.Mutex
	statuses map[domain.AnalysisStatus]int
	cache    map[string]int
	batches  []int
	faults   int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		statuses: make(map[domain.AnalysisStatus]int),
		cache:    make(map[string]int),
	}
}

func (o *recordingObserver) ItemProcessed(status domain.AnalysisStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[status]++
}

func (o *recordingObserver) BatchCompleted(size int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, size)
}

func (o *recordingObserver) CacheOperation(operation string, state domain.CacheState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache[operation+":"+state.String()]++
}

func (o *recordingObserver) AnalyzerFault() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.faults++
}

// --- Test helpers ---

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

var testConfig = Config{
	StoreTimeout:      time.Second,
	Concurrency:       4,
	MaxBatch:          10,
	DashboardPageSize: 3,
	DashboardTTL:      5 * time.Second,
}

type testEnv struct {
	svc      *Service
	repo     *mockEmailRepo
	cache    domain.ScoreCache
	analyzer *countingAnalyzer
	observer *recordingObserver
	clock    *clockwork.FakeClock
}

func newTestEnv(t *testing.T, cache domain.ScoreCache) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	if cache == nil {
		cache = memory.NewScoreCache(time.Hour, sentiment.NewLexiconAnalyzer().Version(), clock)
	}
	env := &testEnv{
		repo:     newMockEmailRepo(),
		cache:    cache,
		analyzer: newCountingAnalyzer(),
		observer: newRecordingObserver(),
		clock:    clock,
	}
	env.svc = NewService(env.repo, env.cache, env.analyzer, env.observer, clock, testConfig)
	return env
}

func (e *testEnv) create(t *testing.T, subject, body string, sentAt time.Time) *domain.Email {
	t.Helper()
	email, err := e.svc.CreateEmail(context.Background(), domain.NewEmail{
		Subject:  subject,
		Body:     body,
		Sender:   "alice@example.com",
		Receiver: "support@example.com",
		SentAt:   sentAt,
	})
	if err != nil {
		t.Fatalf("create email: %v", err)
	}
	return email
}

// seedScored inserts an email straight into the store with the given score.
func (e *testEnv) seedScored(t *testing.T, body string, sentAt time.Time, score *float64) *domain.Email {
	t.Helper()
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatal(err)
	}
	email := &domain.Email{
		ID: id, Subject: "seed", Body: body, Sender: "bob@example.com", Receiver: "team@example.com",
		SentAt: sentAt, CreatedAt: sentAt,
	}
	ctx := context.Background()
	if err := e.repo.EmailStore.Create(ctx, email); err != nil {
		t.Fatal(err)
	}
	if score != nil {
		if err := e.repo.EmailStore.UpdateScore(ctx, id, *score, sentAt); err != nil {
			t.Fatal(err)
		}
	}
	return email
}

func ptr(f float64) *float64 { return &f }
