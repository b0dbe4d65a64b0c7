package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionsCreated,
		sessionsDeleted,
		sessionsPruned,
		messagesAppended,
	)
}

var (
	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_created_total",
			Help: "Sessions created (explicitly or by first message).",
		},
	)

	sessionsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_deleted_total",
			Help: "Sessions deleted by the user (clear-all included).",
		},
	)

	sessionsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_pruned_total",
			Help: "Idle sessions removed by the retention worker.",
		},
	)

	messagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_appended_total",
			Help: "Messages appended to sessions, by role.",
		},
		[]string{"role"},
	)
)

func IncSessionsCreated()      { sessionsCreated.Inc() }
func IncSessionsDeleted(n int) { sessionsDeleted.Add(float64(n)) }
func IncSessionsPruned(n int64) { sessionsPruned.Add(float64(n)) }

func IncMessageAppended(role string) { messagesAppended.WithLabelValues(norm(role)).Inc() }
