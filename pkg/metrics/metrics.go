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

	// LLMRequestDuration tracks language model call duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Language model request duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// IntentClassificationsTotal counts classifier outcomes per category.
	IntentClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intent_classifications_total",
			Help: "Chat intent classifications by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	// InsuranceContextTotal counts how the insurance policy excerpt was obtained.
	InsuranceContextTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurance_context_resolutions_total",
			Help: "Insurance context resolutions by configured method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// DocumentIngestionsTotal counts document ingestion attempts.
	DocumentIngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_ingestions_total",
			Help: "Policy document ingestions by outcome",
		},
		[]string{"outcome"},
	)

	// VectorSearchResults tracks how many chunks a semantic search returned.
	VectorSearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_search_results",
			Help:    "Number of chunks returned per semantic search",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	// ChatEventsPublished counts chat events published to JetStream.
	ChatEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_published_total",
			Help: "Chat events published to the event stream",
		},
		[]string{"endpoint", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for a completed language model call.
func RecordLLMRequest(provider, model, status string, duration float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(provider, model, status).Observe(duration)
	if tokensIn > 0 {
		LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	}
}

// RecordIntent records a classifier result.
func RecordIntent(category, outcome string) {
	IntentClassificationsTotal.WithLabelValues(category, outcome).Inc()
}

// RecordInsuranceContext records how an insurance excerpt was resolved.
func RecordInsuranceContext(method, outcome string) {
	InsuranceContextTotal.WithLabelValues(method, outcome).Inc()
}

// RecordIngestion records a document ingestion outcome.
func RecordIngestion(outcome string) {
	DocumentIngestionsTotal.WithLabelValues(outcome).Inc()
}
