package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer engine Prometheus metrics.
var (
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planagent",
			Name:      "answers_total",
			Help:      "Total answers produced, by query mode and outcome",
		},
		[]string{"mode", "status"},
	)

	GuardTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planagent",
			Name:      "guard_triggers_total",
			Help:      "Total deterministic guard short-circuits",
		},
		[]string{"guard"},
	)

	RetrievedChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "planagent",
			Name:      "retrieved_chunks",
			Help:      "Number of chunks kept after retrieval post-processing",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planagent",
			Name:      "llm_requests_total",
			Help:      "Total LLM completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "planagent",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"provider", "model"},
	)

	StreamFragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "planagent",
			Name:      "stream_fragments_total",
			Help:      "Total answer fragments emitted over streaming responses",
		},
	)
)

var answerMetricsRegistered bool

// RegisterAnswerMetrics registers Prometheus answer metrics. Must be called once from main.
func RegisterAnswerMetrics() {
	if answerMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnswersTotal)
	prometheus.MustRegister(GuardTriggersTotal)
	prometheus.MustRegister(RetrievedChunks)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(StreamFragmentsTotal)
	answerMetricsRegistered = true
}
