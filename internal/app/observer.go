package app

import (
	"context"
	"time"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

// AnalysisObserver receives analysis events, typically to feed metrics.
// Implementations must be safe for concurrent use.
type AnalysisObserver interface {
	ItemProcessed(status domain.AnalysisStatus)
	BatchCompleted(size int, elapsed time.Duration)
	CacheOperation(operation string, state domain.CacheState)
	AnalyzerFault()
}

type noopObserver struct{}

func (noopObserver) ItemProcessed(domain.AnalysisStatus)      {}
func (noopObserver) BatchCompleted(int, time.Duration)        {}
func (noopObserver) CacheOperation(string, domain.CacheState) {}
func (noopObserver) AnalyzerFault()                           {}

type noopPublisher struct{}

func (noopPublisher) PublishEmailsChanged(context.Context) {}
