package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Email is a stored email record. Subject and body are immutable once created,
// so a score can only go stale through re-analysis, never through content drift.
type Email struct {
	ID        uuid.UUID
	Subject   string
	Body      string
	Sender    string
	Receiver  string
	SentAt    time.Time
	CreatedAt time.Time

	// SentimentScore is nil until the email has been analyzed at least once.
	SentimentScore *float64
	AnalyzedAt     *time.Time
}

// Scored reports whether the email carries a sentiment score.
func (e *Email) Scored() bool {
	return e.SentimentScore != nil
}

// Band returns the sentiment band of a scored email. ok is false for unscored emails.
func (e *Email) Band() (band Band, ok bool) {
	if e.SentimentScore == nil {
		return "", false
	}
	return ClassifyScore(*e.SentimentScore), true
}

// NewEmail carries the caller-supplied fields of an email about to be created.
type NewEmail struct {
	Subject  string
	Body     string
	Sender   string
	Receiver string
	SentAt   time.Time
}

// EmailFilter narrows a listing. Zero values mean "no constraint".
type EmailFilter struct {
	Band   Band
	Sender string
	From   time.Time
	To     time.Time
	Limit  int
}

// EmailRepository is the record store contract.
type EmailRepository interface {
	Create(ctx context.Context, email *Email) error
	GetByID(ctx context.Context, id uuid.UUID) (*Email, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score float64, analyzedAt time.Time) error

	// ListPage returns up to limit emails with an ID strictly greater than after,
	// ordered by ID. Passing uuid.Nil starts from the beginning.
	ListPage(ctx context.Context, after uuid.UUID, limit int) ([]Email, error)
	// List returns emails matching filter, newest SentAt first.
	List(ctx context.Context, filter EmailFilter) ([]Email, error)

	Ping(ctx context.Context) error
}
