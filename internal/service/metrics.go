package service

import "github.com/prometheus/client_golang/prometheus"

var (
	inferenceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summaryd",
			Subsystem: "inference",
			Name:      "total",
			Help:      "Summarization requests by outcome (ok, empty, not_ready, failure)",
		},
		[]string{"outcome"},
	)

	inferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "summaryd",
			Subsystem: "inference",
			Name:      "duration_seconds",
			Help:      "Duration of model calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	inputTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "summaryd",
			Name:      "input_tokens",
			Help:      "Input document size in BPE tokens before truncation",
			Buckets:   prometheus.ExponentialBuckets(32, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(inferenceTotal, inferenceDuration, inputTokens)
}
