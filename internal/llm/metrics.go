package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetriesTotal counts rate-limit retries issued by the invoker.
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codehelperd",
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Total completion calls retried after rate limiting",
		},
	)

	// RetryExhaustionsTotal counts invocations that stayed rate-limited
	// through the whole schedule.
	RetryExhaustionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codehelperd",
			Subsystem: "llm",
			Name:      "retry_exhaustions_total",
			Help:      "Total completion calls that exhausted the retry schedule",
		},
	)
)
