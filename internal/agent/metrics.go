package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts Run invocations by classified intent.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codehelperd",
			Subsystem: "agent",
			Name:      "requests_total",
			Help:      "Total requests processed, labeled by classified intent",
		},
		[]string{"intent"},
	)

	// ParseFallbacksTotal counts structured outputs that failed validation
	// and triggered the free-text fallback.
	ParseFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codehelperd",
			Subsystem: "agent",
			Name:      "parse_fallbacks_total",
			Help:      "Total structured-output parse failures recovered via free-text fallback",
		},
	)

	// ApologiesTotal counts requests where the fallback also failed and the
	// caller received the apology text.
	ApologiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codehelperd",
			Subsystem: "agent",
			Name:      "apologies_total",
			Help:      "Total requests answered with the apology text after fallback failure",
		},
	)

	// RateLimitAdvisoriesTotal counts requests answered with the rate-limit
	// advisory after retries were exhausted.
	RateLimitAdvisoriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codehelperd",
			Subsystem: "agent",
			Name:      "rate_limit_advisories_total",
			Help:      "Total requests answered with the rate-limit advisory",
		},
	)
)
