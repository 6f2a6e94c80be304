package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
	apperrors "github.com/AdityaP700/Sentimatrix/internal/platform/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type Config struct {
	StoreTimeout      time.Duration
	Concurrency       int
	MaxBatch          int
	DashboardPageSize int
	DashboardTTL      time.Duration // zero disables snapshot reuse
}

// Service is the application layer. It owns every use case that touches
// more than one collaborator.
type Service struct {
	emails   domain.EmailRepository
	cache    domain.ScoreCache
	analyzer domain.Analyzer
	observer AnalysisObserver
	changes  domain.ChangePublisher
	clock    clockwork.Clock
	cfg      Config

	scoreGroup     singleflight.Group
	dashboardGroup singleflight.Group
	dashboard      snapshot
}

// NewService wires the use cases. observer may be nil.
func NewService(emails domain.EmailRepository, cache domain.ScoreCache, analyzer domain.Analyzer, observer AnalysisObserver, clock clockwork.Clock, cfg Config) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxBatch < 1 {
		cfg.MaxBatch = 1
	}
	if cfg.DashboardPageSize < 1 {
		cfg.DashboardPageSize = 500
	}
	return &Service{
		emails:   emails,
		cache:    cache,
		analyzer: analyzer,
		observer: observer,
		changes:  noopPublisher{},
		clock:    clock,
		cfg:      cfg,
	}
}

// SetChangePublisher installs the cross-instance change fan-out. It must be
// called before the service handles requests.
func (s *Service) SetChangePublisher(p domain.ChangePublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	s.changes = p
}

// InvalidateDashboard drops the cached dashboard snapshot. Other instances
// call it through the change subscription.
func (s *Service) InvalidateDashboard() {
	s.dashboard.invalidate()
}

func (s *Service) emailsChanged(ctx context.Context) {
	s.dashboard.invalidate()
	s.changes.PublishEmailsChanged(ctx)
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// CreateEmail validates and stores a new, unscored email.
func (s *Service) CreateEmail(ctx context.Context, in domain.NewEmail) (*domain.Email, error) {
	if err := validateNewEmail(in); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.InternalError("failed to generate email id", err)
	}

	email := &domain.Email{
		ID:        id,
		Subject:   in.Subject,
		Body:      in.Body,
		Sender:    strings.TrimSpace(in.Sender),
		Receiver:  strings.TrimSpace(in.Receiver),
		SentAt:    in.SentAt.UTC(),
		CreatedAt: s.clock.Now().UTC(),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.emails.Create(storeCtx, email); err != nil {
		return nil, apperrors.ExternalError("failed to store email", err)
	}

	s.emailsChanged(ctx)
	return email, nil
}

func validateNewEmail(in domain.NewEmail) error {
	required := []struct {
		field string
		value string
	}{
		{"body", in.Body},
		{"sender", in.Sender},
		{"receiver", in.Receiver},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.ValidationError(r.field+" is required").
				WithField("field", r.field).
				WithCause(domain.ErrInvalidEmail)
		}
	}
	if in.SentAt.IsZero() {
		return apperrors.ValidationError("time is required").
			WithField("field", "time").
			WithCause(domain.ErrInvalidEmail)
	}
	return nil
}

// GetEmail returns a single email. Malformed ids are reported as not found.
func (s *Service) GetEmail(ctx context.Context, rawID string) (*domain.Email, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.NotFoundError("email not found").WithField("email_id", rawID)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	email, err := s.emails.GetByID(storeCtx, id)
	if errors.Is(err, domain.ErrEmailNotFound) {
		return nil, apperrors.NotFoundError("email not found").WithField("email_id", rawID)
	}
	if err != nil {
		return nil, apperrors.ExternalError("failed to load email", err)
	}
	return email, nil
}

// ListEmails returns emails matching filter, newest first.
func (s *Service) ListEmails(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error) {
	switch {
	case filter.Limit < 0 || filter.Limit > maxListLimit:
		return nil, apperrors.ValidationError(fmt.Sprintf("limit must be between 1 and %d", maxListLimit)).
			WithField("limit", filter.Limit)
	case filter.Limit == 0:
		filter.Limit = defaultListLimit
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, apperrors.ValidationError("to must not be before from")
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	emails, err := s.emails.List(storeCtx, filter)
	if err != nil {
		return nil, apperrors.ExternalError("failed to list emails", err)
	}
	return emails, nil
}

// CheckStore pings the record store; used for readiness.
func (s *Service) CheckStore(ctx context.Context) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.emails.Ping(storeCtx)
}

// CacheHealth reports the score cache's health. It never fails: an
// unreachable cache is reported as unhealthy.
func (s *Service) CacheHealth(ctx context.Context) domain.CacheHealth {
	return s.cache.Health(ctx)
}
