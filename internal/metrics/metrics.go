package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics - Track contract invocation volume and outcomes
var (
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_simulations_total",
			Help: "Total number of contract simulations by method and result",
		},
		[]string{"method", "result"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_submissions_total",
			Help: "Total number of transaction submissions by terminal status",
		},
		[]string{"status"},
	)

	ReadCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_read_calls_total",
			Help: "Total number of read-only contract calls by method",
		},
		[]string{"method"},
	)
)

// Performance metrics - Track latency of the blocking points
var (
	RPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "creatorhub_rpc_request_duration_seconds",
			Help:    "Time taken by a single RPC round trip",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	PollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "creatorhub_poll_attempts",
		Help:    "Number of status polls needed to reach a terminal outcome",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 30, 60},
	})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "creatorhub_submission_duration_seconds",
		Help:    "Time from send to terminal outcome",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})
)

// Error metrics - Track failures by taxonomy kind
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_errors_total",
			Help: "Total number of errors by taxonomy kind",
		},
		[]string{"kind"},
	)

	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorhub_rpc_errors_total",
			Help: "Total number of failed RPC round trips by method",
		},
		[]string{"method"},
	)
)
