package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for dispatched operations.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	AnswerItems       *prometheus.HistogramVec
}

// NewMetrics registers the dispatch metrics once with the default registry.
//
//   - ranking_operations_total{operation,status}
//   - ranking_operation_duration_seconds{operation}
//   - ranking_answer_items{operation}
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			OperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ranking_operations_total",
					Help: "Total number of dispatched operations",
				},
				[]string{"operation", "status"}, // "ok", "invalid", "error"
			),
			OperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ranking_operation_duration_seconds",
					Help:    "Duration of dispatched operations",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
				},
				[]string{"operation"},
			),
			AnswerItems: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ranking_answer_items",
					Help:    "Number of items per answer",
					Buckets: prometheus.ExponentialBuckets(1, 4, 8),
				},
				[]string{"operation"},
			),
		}
	})
	return globalMetrics
}
