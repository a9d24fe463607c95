package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Total number of data cache lookups broken down by dataset and result (hit, miss, error).",
	}, []string{"dataset", "result"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total number of data cache key evictions broken down by reason.",
	}, []string{"reason"})
)

func recordRequest(dataset, result string) {
	cacheRequests.WithLabelValues(dataset, result).Inc()
}

func recordInvalidation(reason string, n int) {
	if reason == "" {
		reason = "manual"
	}
	cacheInvalidations.WithLabelValues(reason).Add(float64(n))
}
