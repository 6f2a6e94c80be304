package domain

import (
	"time"

	"github.com/google/uuid"
)

// BandCounts is the band histogram over scored emails.
type BandCounts struct {
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Positive int `json:"positive"`
}

// Add increments the counter for band.
func (b *BandCounts) Add(band Band) {
	switch band {
	case BandNegative:
		b.Negative++
	case BandPositive:
		b.Positive++
	default:
		b.Neutral++
	}
}

// Sum returns the number of emails counted in the histogram.
func (b BandCounts) Sum() int {
	return b.Negative + b.Neutral + b.Positive
}

// EmailSummary is the compact form of an email shown on the dashboard.
type EmailSummary struct {
	ID      uuid.UUID `json:"id"`
	Subject string    `json:"subject"`
	Sender  string    `json:"sender"`
	Score   *float64  `json:"score,omitempty"`
	Band    Band      `json:"band,omitempty"`
	Time    time.Time `json:"time"`
}

// DashboardStats is a best-effort snapshot over all stored emails.
type DashboardStats struct {
	Total        int            `json:"total"`
	ScoredCount  int            `json:"scored_count"`
	AverageScore float64        `json:"average_score"`
	Bands        BandCounts     `json:"bands"`
	RecentEmails []EmailSummary `json:"recent_emails"`
	LastUpdated  time.Time      `json:"last_updated"`
}

// TrendPoint is the daily aggregate of scored emails.
type TrendPoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	Count        int     `json:"count"`
}
