package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsTotal,
		aiCallLatencyMs,
		aiFallbackReplies,
	)
}

var (
	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "Completion calls per provider/modality/outcome.",
		},
		[]string{"provider", "modality", "outcome"},
	)

	aiCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000},
		},
		[]string{"provider", "modality", "success"},
	)

	aiFallbackReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallback_replies_total",
			Help: "Synthesized replies per kind: image_only, empty, error.",
		},
		[]string{"kind"},
	)
)

func ObserveCompletion(provider string, modality string, latencyMs int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	aiCallsTotal.WithLabelValues(norm(provider), norm(modality), outcome).Inc()
	aiCallLatencyMs.WithLabelValues(norm(provider), norm(modality), strconv.FormatBool(err == nil)).
		Observe(float64(latencyMs))
}

func IncFallbackReply(kind string) {
	aiFallbackReplies.WithLabelValues(norm(kind)).Inc()
}
