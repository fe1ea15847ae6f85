package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	modelState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "summaryd",
			Subsystem: "model",
			Name:      "state",
			Help:      "Current model lifecycle state (1 for the active state)",
		},
		[]string{"state"},
	)

	loadAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "summaryd",
			Subsystem: "model",
			Name:      "load_attempts_total",
			Help:      "Model load attempts by result (success, failure, throttled)",
		},
		[]string{"result"},
	)

	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "summaryd",
			Subsystem: "model",
			Name:      "load_duration_seconds",
			Help:      "Duration of model load attempts in seconds",
			// 100ms .. ~14min
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
	)
)

func init() {
	prometheus.MustRegister(modelState, loadAttemptsTotal, loadDuration)
}

func setStateGauge(s State) {
	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		modelState.WithLabelValues(string(st)).Set(v)
	}
}
