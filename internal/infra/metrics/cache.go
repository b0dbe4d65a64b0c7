package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(kvOps)
}

var kvOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kv_ops_total",
		Help: "Key-value store operations by op and outcome.",
	},
	[]string{"op", "outcome"},
)

func IncKVOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	kvOps.WithLabelValues(norm(op), outcome).Inc()
}
