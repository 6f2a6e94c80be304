package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
)

// CacheMetrics counts score cache outcomes as seen by the analysis path.
type CacheMetrics struct {
	Operations *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score_cache",
			Name:      "operations_total",
			Help:      "Score cache operations by operation (get, put) and outcome (hit, miss, stored, unavailable).",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(m.Operations)
	return m
}

func (m *CacheMetrics) Observe(operation string, state domain.CacheState) {
	m.Operations.WithLabelValues(operation, state.String()).Inc()
}
