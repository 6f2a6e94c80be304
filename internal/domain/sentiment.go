package domain

// Band is a sentiment score bucket used for dashboard histograms and listings.
type Band string

const (
	BandNegative Band = "negative"
	BandNeutral  Band = "neutral"
	BandPositive Band = "positive"
)

// Band thresholds: score < NegativeThreshold is negative, score > PositiveThreshold
// is positive, everything in between (inclusive) is neutral.
const (
	NegativeThreshold = -0.1
	PositiveThreshold = 0.1
)

const (
	MinScore     = -1.0
	MaxScore     = 1.0
	NeutralScore = 0.0
)

// ClassifyScore maps a score to its band.
func ClassifyScore(score float64) Band {
	switch {
	case score < NegativeThreshold:
		return BandNegative
	case score > PositiveThreshold:
		return BandPositive
	default:
		return BandNeutral
	}
}

// ParseBand converts a string to a Band. ok is false for unknown values.
func ParseBand(s string) (Band, bool) {
	switch Band(s) {
	case BandNegative, BandNeutral, BandPositive:
		return Band(s), true
	default:
		return "", false
	}
}

// Analyzer maps text to a score in [MinScore, MaxScore]. Implementations must be
// deterministic and must not perform I/O.
type Analyzer interface {
	Analyze(text string) float64
	// Version identifies the scoring rules; cached scores from another version are ignored.
	Version() string
}

// AnalysisStatus describes how a single item of a batch was resolved.
type AnalysisStatus string

const (
	StatusNotFound      AnalysisStatus = "not_found"
	StatusCacheHit      AnalysisStatus = "cache_hit"
	StatusComputed      AnalysisStatus = "computed"
	StatusPersistFailed AnalysisStatus = "persist_failed"
)

// AnalysisResult is the per-item outcome of a batch analysis.
// Score is nil only for StatusNotFound.
type AnalysisResult struct {
	ID     string
	Score  *float64
	Status AnalysisStatus
	Error  string
}
