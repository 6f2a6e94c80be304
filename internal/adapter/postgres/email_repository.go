package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

const emailColumns = `id, subject, body, sender, receiver, sent_at, created_at, sentiment_score, analyzed_at`

type EmailRepo struct {
	pool *pgxpool.Pool
}

var _ domain.EmailRepository = (*EmailRepo)(nil)

func NewEmailRepo(pool *pgxpool.Pool) *EmailRepo {
	return &EmailRepo{pool: pool}
}

func (r *EmailRepo) Create(ctx context.Context, email *domain.Email) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO emails (id, subject, body, sender, receiver, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		email.ID, email.Subject, email.Body, email.Sender, email.Receiver, email.SentAt, email.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email: %w", err)
	}
	return nil
}

func (r *EmailRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Email, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+emailColumns+` FROM emails WHERE id = $1`, id)

	email, err := scanEmail(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email by ID: %w", err)
	}
	return &email, nil
}

func (r *EmailRepo) UpdateScore(ctx context.Context, id uuid.UUID, score float64, analyzedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE emails SET sentiment_score = $2, analyzed_at = $3 WHERE id = $1`,
		id, score, analyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update sentiment score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmailNotFound
	}
	return nil
}

func (r *EmailRepo) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]domain.Email, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE id > $1 ORDER BY id LIMIT $2`,
		after, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list email page: %w", err)
	}
	return collectEmails(rows)
}

func (r *EmailRepo) List(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return collectEmails(rows)
}

func (r *EmailRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func buildListQuery(filter domain.EmailFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Sender != "" {
		conds = append(conds, "sender = "+arg(filter.Sender))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "sent_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "sent_at <= "+arg(filter.To))
	}
	switch filter.Band {
	case domain.BandNegative:
		conds = append(conds, "sentiment_score < "+arg(domain.NegativeThreshold))
	case domain.BandPositive:
		conds = append(conds, "sentiment_score > "+arg(domain.PositiveThreshold))
	case domain.BandNeutral:
		conds = append(conds, "sentiment_score BETWEEN "+arg(domain.NegativeThreshold)+" AND "+arg(domain.PositiveThreshold))
	}

	var b strings.Builder
	b.WriteString("SELECT " + emailColumns + " FROM emails")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY sent_at DESC, id DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	return b.String(), args
}

func scanEmail(row pgx.Row) (domain.Email, error) {
	var e domain.Email
	err := row.Scan(&e.ID, &e.Subject, &e.Body, &e.Sender, &e.Receiver, &e.SentAt, &e.CreatedAt, &e.SentimentScore, &e.AnalyzedAt)
	return e, err
}

func collectEmails(rows pgx.Rows) ([]domain.Email, error) {
	emails, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Email, error) {
		return scanEmail(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan emails: %w", err)
	}
	return emails, nil
}
