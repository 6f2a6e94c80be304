// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (email.go, sentiment.go, cache.go, stats.go, errors.go)
// with shared types and consumer-side interfaces. No I/O here - adapters implement the contracts.
package domain
