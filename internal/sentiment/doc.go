// Package sentiment implements the lexical sentiment analyzer and content fingerprinting.
//
// LexiconAnalyzer scores text in [-1, 1] from a fixed valence lexicon with negation, intensifier and
// exclamation handling. It is pure: no I/O, no mutable state, identical input always yields an identical score.
// Fingerprint derives the cache key for a subject/body pair under the same normalisation the analyzer applies,
// so two emails sharing a fingerprint always share a score.
package sentiment
