package sentiment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalises text: invalid UTF-8 is dropped, the result is NFKC-normalised,
// case-folded and all whitespace runs are collapsed into a single space.
func Normalize(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	// cases.Caser is stateful, so one per call.
	folded := cases.Fold().String(norm.NFKC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}

// Content joins subject and body into the text that gets analyzed.
func Content(subject, body string) string {
	return subject + "\n" + body
}

// tokenize splits normalised text into words and counts exclamation marks.
// Apostrophes stay inside words so contractions like "don't" survive.
func tokenize(text string) (words []string, exclamations int) {
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, strings.Trim(b.String(), "'"))
			b.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			if b.Len() > 0 {
				b.WriteRune('\'')
			}
		case r == '!':
			exclamations++
			flush()
		default:
			flush()
		}
	}
	flush()

	return words, exclamations
}
