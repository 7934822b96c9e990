package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	pathLocal        = "local"
	pathRemote       = "remote"
	pathRemoteFailed = "remote_failed"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Subsystem: "agent",
		Name:      "turns_total",
		Help:      "Completed turns by the path that produced the reply",
	}, []string{"path"})

	remoteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "persona",
		Subsystem: "agent",
		Name:      "remote_failures_total",
		Help:      "Remote generation failures by kind",
	}, []string{"kind"})

	winningScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "persona",
		Subsystem: "agent",
		Name:      "winning_score",
		Help:      "Score of the best local candidate per turn",
		Buckets:   []float64{0, 1, 2.5, 5, 7.5, 10, 15, 20, 30, 50},
	})

	remoteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "persona",
		Subsystem: "agent",
		Name:      "remote_latency_seconds",
		Help:      "Wall-clock time of remote generation including retries",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	})
)
