package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Accuracy rollup refresh metrics
var (
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metric_refreshes_total",
			Help:      "Total number of accuracy rollup refresh runs",
		},
		[]string{"status"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "metric_refresh_duration_seconds",
			Help:      "Accuracy rollup refresh duration distribution",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5},
		},
	)
)

// RefreshCompleted records a successful rollup refresh
func RefreshCompleted(duration time.Duration) {
	RefreshesTotal.WithLabelValues("completed").Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// RefreshFailed records a failed rollup refresh
func RefreshFailed() {
	RefreshesTotal.WithLabelValues("failed").Inc()
}
