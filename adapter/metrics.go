package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	executionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exec_adapter_execution_requests_total",
			Help: "Execution request submissions by outcome.",
		},
		[]string{"outcome"},
	)

	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exec_adapter_callbacks_total",
			Help: "Execution callbacks by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(executionRequestsTotal)
	prometheus.MustRegister(callbacksTotal)
}
