package sentiment

import (
	"math"
)

const (
	analyzerVersion = "lexicon-v1"

	boosterIncrement   = 0.293
	negationScalar     = -0.74
	negationWindow     = 3
	exclamationBoost   = 0.292
	maxExclamations    = 4
	normalizationAlpha = 15.0
	scorePrecision     = 1e4
)

// LexiconAnalyzer scores text with a fixed valence lexicon.
type LexiconAnalyzer struct{}

func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{}
}

func (a *LexiconAnalyzer) Version() string {
	return analyzerVersion
}

// Analyze returns a score in [-1, 1]. Empty or unparseable text scores 0.
func (a *LexiconAnalyzer) Analyze(text string) float64 {
	words, exclamations := tokenize(Normalize(text))
	if len(words) == 0 {
		return 0
	}

	var (
		sum     float64
		boost   float64
		negated int
	)
	for _, w := range words {
		if _, ok := negators[w]; ok {
			negated = negationWindow
			boost = 0
			continue
		}
		if b, ok := boosters[w]; ok {
			boost += b
			continue
		}

		if v, ok := lexicon[w]; ok {
			if v > 0 {
				v += boost
			} else {
				v -= boost
			}
			if negated > 0 {
				v *= negationScalar
			}
			sum += v
		}

		boost = 0
		if negated > 0 {
			negated--
		}
	}

	if sum != 0 && exclamations > 0 {
		sum += math.Copysign(float64(min(exclamations, maxExclamations))*exclamationBoost, sum)
	}

	return normalize(sum)
}

// normalize squashes an unbounded valence sum into [-1, 1] and rounds it so
// stored and cached scores compare equal.
func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normalizationAlpha)
	score = math.Round(score*scorePrecision) / scorePrecision
	return math.Max(-1, math.Min(1, score))
}
