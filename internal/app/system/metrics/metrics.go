// Package metrics exposes Prometheus counters for workflow outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts committed state changes by workflow and target state.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "placementhub",
		Name:      "workflow_transitions_total",
		Help:      "Committed workflow state changes.",
	}, []string{"workflow", "to"})

	// Rejections counts operations refused before any write, by kind.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "placementhub",
		Name:      "workflow_rejections_total",
		Help:      "Workflow operations refused, by workflow and error kind.",
	}, []string{"workflow", "kind"})

	// Created counts rows created by workflow operations.
	Created = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "placementhub",
		Name:      "workflow_created_total",
		Help:      "Entities created by workflow operations.",
	}, []string{"entity"})
)

// Transition records a committed state change.
func Transition(workflow, to string) { Transitions.WithLabelValues(workflow, to).Inc() }

// Rejection records a refused operation.
func Rejection(workflow, kind string) { Rejections.WithLabelValues(workflow, kind).Inc() }

// Create records n new entities.
func Create(entity string, n int) { Created.WithLabelValues(entity).Add(float64(n)) }
