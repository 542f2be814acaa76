// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cashstuffing",
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cashstuffing",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LedgerPostings counts balance postings applied to accounts and envelopes.
	LedgerPostings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashstuffing",
		Name:      "ledger_postings_total",
		Help:      "Balance postings applied by the ledger.",
	})

	// BalanceCorrections counts accounts whose stored balance was repaired by recalculation.
	BalanceCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashstuffing",
		Name:      "balance_corrections_total",
		Help:      "Bank accounts whose current balance drifted from the ledger and was corrected.",
	})
)

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
