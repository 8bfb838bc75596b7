package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daytrace",
			Name:      "activity_transitions_total",
			Help:      "Activity transitions committed by the engine.",
		},
		[]string{"kind"},
	)

	transitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daytrace",
			Name:      "activity_transition_failures_total",
			Help:      "Transitions that failed against the store.",
		},
		[]string{"kind"},
	)
)
