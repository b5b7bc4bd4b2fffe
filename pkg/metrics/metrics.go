// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TurnsTotal tracks conversation turns by final outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Total conversation turns processed",
		},
		[]string{"outcome"},
	)

	// TurnIterations tracks reasoning iterations consumed per turn.
	TurnIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_turn_iterations",
			Help:    "Reasoning iterations consumed per conversation turn",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	// ModelCallDuration tracks language model call duration.
	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "Language model call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model", "status"},
	)

	// ModelTokensTotal tracks total language model tokens processed.
	ModelTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total language model tokens processed",
		},
		[]string{"model", "direction"},
	)

	// ToolInvocationsTotal tracks tool invocations by outcome.
	ToolInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_invocations_total",
			Help: "Total tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	// SearchRequestsTotal tracks catalog searches by terminal status.
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_search_requests_total",
			Help: "Total catalog search requests",
		},
		[]string{"status"},
	)

	// SearchRetriesTotal tracks retried catalog search attempts.
	SearchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_search_retries_total",
			Help: "Total retried catalog search attempts",
		},
	)

	// SearchDuration tracks catalog search duration including retries.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_search_duration_seconds",
			Help:    "Catalog search duration including retries",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"status"},
	)

	// MessagesTotal tracks messages appended to conversation memory.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended to conversation memory",
		},
		[]string{"role"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordModelCall records metrics for one language model call.
func RecordModelCall(model, status string, duration float64, tokensIn, tokensOut int) {
	ModelCallDuration.WithLabelValues(model, status).Observe(duration)
	ModelTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	ModelTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordSearch records metrics for one catalog search, including retries.
func RecordSearch(status string, duration float64, retries int) {
	SearchRequestsTotal.WithLabelValues(status).Inc()
	SearchDuration.WithLabelValues(status).Observe(duration)
	if retries > 0 {
		SearchRetriesTotal.Add(float64(retries))
	}
}
