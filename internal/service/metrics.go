package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "workflow",
		Name:      "transitions_total",
		Help:      "Committed request transitions by action and resulting status.",
	}, []string{"action", "status"})
	operationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "workflow",
		Name:      "operations_total",
		Help:      "Mutating operations by name and error kind (empty on success).",
	}, []string{"op", "kind"})
)

func observed(op string, r Result) Result {
	operationResults.WithLabelValues(op, string(r.Kind)).Inc()
	return r
}
