package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
	apperrors "github.com/AdityaP700/Sentimatrix/internal/platform/errors"
	"github.com/AdityaP700/Sentimatrix/internal/sentiment"
)

// scoreOutcome is what one singleflight computation hands to every caller
// waiting on the same fingerprint.
type scoreOutcome struct {
	score  float64
	hit    bool // served from the cache
	stored bool // freshly computed and written to the cache
}

// AnalyzeBatch scores the emails named by ids. The result has one entry per
// id in input order; per-item failures are reported in the entry's status,
// never as an error. An error is returned only when the batch is rejected
// as a whole (validation or an unreachable record store).
func (s *Service) AnalyzeBatch(ctx context.Context, ids []string) ([]domain.AnalysisResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.ValidationError("at least one email id is required")
	}
	if len(ids) > s.cfg.MaxBatch {
		return nil, apperrors.ValidationError(fmt.Sprintf("at most %d email ids per request", s.cfg.MaxBatch)).
			WithField("max_batch", s.cfg.MaxBatch).
			WithField("received", len(ids))
	}

	if err := s.CheckStore(ctx); err != nil {
		return nil, apperrors.UnavailableError("record store unreachable", err)
	}

	start := s.clock.Now()
	results := make([]domain.AnalysisResult, len(ids))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, rawID := range ids {
		g.Go(func() error {
			results[i] = s.analyzeOne(ctx, rawID)
			return nil
		})
	}
	_ = g.Wait()

	s.emailsChanged(ctx)
	s.observer.BatchCompleted(len(ids), s.clock.Since(start))
	slog.InfoContext(ctx, "Analysis batch complete", "items", len(ids), "duration", s.clock.Since(start))
	return results, nil
}

func (s *Service) analyzeOne(ctx context.Context, rawID string) domain.AnalysisResult {
	result := s.resolveItem(ctx, rawID)
	s.observer.ItemProcessed(result.Status)
	return result
}

func (s *Service) resolveItem(ctx context.Context, rawID string) domain.AnalysisResult {
	result := domain.AnalysisResult{ID: rawID}

	id, err := uuid.Parse(rawID)
	if err != nil {
		result.Status = domain.StatusNotFound
		result.Error = "invalid email id"
		return result
	}

	email, err := s.loadEmail(ctx, id)
	if err != nil {
		result.Status = domain.StatusNotFound
		result.Error = err.Error()
		return result
	}

	score, status := s.scoreEmail(ctx, email)
	result.Score = &score
	result.Status = status

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.emails.UpdateScore(storeCtx, id, score, s.clock.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "Failed to persist sentiment score", "email_id", rawID, "error", err)
		result.Status = domain.StatusPersistFailed
		result.Error = "failed to persist sentiment score"
	}
	return result
}

func (s *Service) loadEmail(ctx context.Context, id uuid.UUID) (*domain.Email, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	email, err := s.emails.GetByID(storeCtx, id)
	if errors.Is(err, domain.ErrEmailNotFound) {
		return nil, domain.ErrEmailNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load email for analysis", "email_id", id.String(), "error", err)
		return nil, errors.New("failed to load email")
	}
	return email, nil
}

// scoreEmail collapses concurrent requests for identical content onto a
// single cache lookup and computation.
func (s *Service) scoreEmail(ctx context.Context, email *domain.Email) (float64, domain.AnalysisStatus) {
	fingerprint := sentiment.Fingerprint(email.Subject, email.Body)

	leader := false
	v, _, _ := s.scoreGroup.Do(fingerprint, func() (any, error) {
		leader = true
		return s.resolveScore(ctx, fingerprint, email), nil
	})
	out := v.(scoreOutcome)

	switch {
	case out.hit:
		return out.score, domain.StatusCacheHit
	case !leader && out.stored:
		return out.score, domain.StatusCacheHit
	default:
		return out.score, domain.StatusComputed
	}
}

func (s *Service) resolveScore(ctx context.Context, fingerprint string, email *domain.Email) scoreOutcome {
	lookup := s.cache.Get(ctx, fingerprint)
	s.observer.CacheOperation("get", lookup.State)
	if lookup.State == domain.CacheHit {
		slog.DebugContext(ctx, "Sentiment cache hit", "fingerprint", fingerprint)
		return scoreOutcome{score: clampScore(lookup.Entry.Score), hit: true}
	}

	score := s.safeAnalyze(ctx, sentiment.Content(email.Subject, email.Body))

	state := s.cache.Put(ctx, fingerprint, domain.CachedScore{
		Score:           score,
		AnalyzerVersion: s.analyzer.Version(),
		ComputedAt:      s.clock.Now().UTC(),
	})
	s.observer.CacheOperation("put", state)

	return scoreOutcome{score: score, stored: state == domain.CacheStored}
}

// safeAnalyze turns an analyzer panic or an out-of-range result into the
// neutral score so one bad item cannot abort the batch.
func (s *Service) safeAnalyze(ctx context.Context, text string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Analyzer fault, using neutral score", "panic", r)
			s.observer.AnalyzerFault()
			score = domain.NeutralScore
		}
	}()

	return clampScore(s.analyzer.Analyze(text))
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return domain.NeutralScore
	}
	return max(domain.MinScore, min(domain.MaxScore, score))
}
