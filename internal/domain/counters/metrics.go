package counters

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"numera/internal/core/apperror"
)

// Prometheus metrics — global, label cardinality bounded by the error code
// taxonomy (no per-counter labels).
var (
	allocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "numera_allocations_total",
		Help: "Total counter allocation attempts by outcome",
	}, []string{"outcome"})

	allocationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "numera_allocation_duration_seconds",
		Help:    "End-to-end allocation latency including store round trip",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	// Eager registration; harmless when no scrape endpoint is exposed.
	prometheus.MustRegister(allocationsTotal, allocationDuration)
}

func observeAllocation(err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if appErr, ok := apperror.AsAppError(err); ok {
			outcome = appErr.Code
		}
	}
	allocationsTotal.WithLabelValues(outcome).Inc()
	allocationDuration.Observe(elapsed.Seconds())
}
