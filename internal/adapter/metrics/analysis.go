package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

// AnalysisMetrics records batch analysis throughput. It satisfies
// app.AnalysisObserver.
type AnalysisMetrics struct {
	Items          *prometheus.CounterVec
	BatchSize      prometheus.Histogram
	BatchDuration  prometheus.Histogram
	AnalyzerFaults prometheus.Counter

	cache *CacheMetrics
}

func NewAnalysisMetrics(reg prometheus.Registerer, cache *CacheMetrics) *AnalysisMetrics {
	m := &AnalysisMetrics{
		Items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "items_total",
			Help:      "Analyzed items by result status.",
		}, []string{"status"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "batch_size",
			Help:      "Number of ids per analyze request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a full analyze request.",
			Buckets:   prometheus.DefBuckets,
		}),
		AnalyzerFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "analyzer_faults_total",
			Help:      "Analyzer panics recovered and replaced by a neutral score.",
		}),
		cache: cache,
	}

	reg.MustRegister(m.Items, m.BatchSize, m.BatchDuration, m.AnalyzerFaults)
	return m
}

func (m *AnalysisMetrics) ItemProcessed(status domain.AnalysisStatus) {
	m.Items.WithLabelValues(string(status)).Inc()
}

func (m *AnalysisMetrics) BatchCompleted(size int, elapsed time.Duration) {
	m.BatchSize.Observe(float64(size))
	m.BatchDuration.Observe(elapsed.Seconds())
}

func (m *AnalysisMetrics) CacheOperation(operation string, state domain.CacheState) {
	if m.cache != nil {
		m.cache.Observe(operation, state)
	}
}

func (m *AnalysisMetrics) AnalyzerFault() {
	m.AnalyzerFaults.Inc()
}
