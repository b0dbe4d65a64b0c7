package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		videoJobsTotal,
		videoPollAttempts,
		videoJobDurationSec,
	)
}

var (
	videoJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_jobs_total",
			Help: "Video generation jobs by final status.",
		},
		[]string{"status"},
	)

	videoPollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_poll_attempts",
			Help:    "Status polls issued per video job.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 120},
		},
	)

	videoJobDurationSec = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_job_duration_seconds",
			Help:    "Wall time from submission to terminal state.",
			Buckets: []float64{5, 15, 30, 60, 120, 240, 480, 900},
		},
	)
)

func ObserveVideoJob(status string, attempts int, durationSec float64) {
	videoJobsTotal.WithLabelValues(norm(status)).Inc()
	videoPollAttempts.Observe(float64(attempts))
	videoJobDurationSec.Observe(durationSec)
}
