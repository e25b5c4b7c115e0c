package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels. State names are fixed per state type,
// so label cardinality stays bounded.
var (
	// stateAdvancesTotal tracks state computations by machine, state and outcome.
	stateAdvancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_state_advances_total",
		Help: "Total number of state computations by machine, state, and outcome (success or error)",
	}, []string{"machine", "state", "outcome"})

	// advanceDuration tracks how long a single state computation takes.
	advanceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_advance_duration_seconds",
		Help:    "Duration of state computation by machine, state, and outcome",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"machine", "state", "outcome"})

	// transitionsTotal tracks state transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transitions_total",
		Help: "Total number of state transitions by machine, from_state, to_state, and outcome",
	}, []string{"machine", "from_state", "to_state", "outcome"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
