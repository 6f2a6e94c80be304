package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

type EmailStore struct {
	mu     sync.RWMutex
	emails map[uuid.UUID]*domain.Email
	order  []uuid.UUID // sorted by ID bytes, drives keyset pagination
}

var _ domain.EmailRepository = (*EmailStore)(nil)

func NewEmailStore() *EmailStore {
	return &EmailStore{emails: make(map[uuid.UUID]*domain.Email)}
}

func (s *EmailStore) Create(_ context.Context, email *domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email.ID]; exists {
		return fmt.Errorf("email %s already exists", email.ID)
	}

	s.emails[email.ID] = clone(email)
	i := s.position(email.ID)
	s.order = slices.Insert(s.order, i, email.ID)
	return nil
}

func (s *EmailStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.emails[id]
	if !ok {
		return nil, domain.ErrEmailNotFound
	}
	return clone(email), nil
}

func (s *EmailStore) UpdateScore(_ context.Context, id uuid.UUID, score float64, analyzedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.emails[id]
	if !ok {
		return domain.ErrEmailNotFound
	}
	email.SentimentScore = &score
	email.AnalyzedAt = &analyzedAt
	return nil
}

func (s *EmailStore) ListPage(_ context.Context, after uuid.UUID, limit int) ([]domain.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if after != uuid.Nil {
		start = sort.Search(len(s.order), func(i int) bool {
			return bytes.Compare(s.order[i][:], after[:]) > 0
		})
	}

	end := min(start+limit, len(s.order))
	page := make([]domain.Email, 0, max(end-start, 0))
	for _, id := range s.order[start:end] {
		page = append(page, *clone(s.emails[id]))
	}
	return page, nil
}

func (s *EmailStore) List(_ context.Context, filter domain.EmailFilter) ([]domain.Email, error) {
	s.mu.RLock()
	matched := make([]domain.Email, 0)
	for _, email := range s.emails {
		if matches(email, filter) {
			matched = append(matched, *clone(email))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Email) int {
		if c := b.SentAt.Compare(a.SentAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *EmailStore) Ping(context.Context) error {
	return nil
}

// position returns the index at which id keeps s.order sorted.
func (s *EmailStore) position(id uuid.UUID) int {
	return sort.Search(len(s.order), func(i int) bool {
		return bytes.Compare(s.order[i][:], id[:]) >= 0
	})
}

func matches(email *domain.Email, filter domain.EmailFilter) bool {
	if filter.Sender != "" && email.Sender != filter.Sender {
		return false
	}
	if !filter.From.IsZero() && email.SentAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && email.SentAt.After(filter.To) {
		return false
	}
	if filter.Band != "" {
		band, ok := email.Band()
		if !ok || band != filter.Band {
			return false
		}
	}
	return true
}

func clone(email *domain.Email) *domain.Email {
	c := *email
	if email.SentimentScore != nil {
		score := *email.SentimentScore
		c.SentimentScore = &score
	}
	if email.AnalyzedAt != nil {
		at := *email.AnalyzedAt
		c.AnalyzedAt = &at
	}
	return &c
}
