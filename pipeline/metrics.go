package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal tracks extract runs by outcome.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "secflow_pipeline_runs_total",
		Help: "Total number of extract runs by outcome (success or error)",
	}, []string{"outcome"})

	// retriesTotal tracks repeated stage computations.
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "secflow_pipeline_stage_retries_total",
		Help: "Total number of stage retries by stage",
	}, []string{"stage"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "secflow_pipeline_run_duration_seconds",
		Help:    "Duration of a complete extract run",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	// messagesTotal tracks queue messages handled by Serve, by outcome.
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "secflow_pipeline_messages_total",
		Help: "Total number of queue messages handled by outcome (processed, invalid, duplicate, requeued)",
	}, []string{"outcome"})
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"

	messageProcessed = "processed"
	messageInvalid   = "invalid"
	messageDuplicate = "duplicate"
	messageRequeued  = "requeued"
)
