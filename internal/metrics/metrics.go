// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MutationsTotal counts committed store mutations by operation name.
var MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vidhyadham_mutations_total",
	Help: "Committed state store mutations by operation.",
}, []string{"op"})

// MutationFailures counts rejected mutations by error class.
var MutationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vidhyadham_mutation_failures_total",
	Help: "Rejected state store mutations by error class.",
}, []string{"op", "reason"})

// NotificationsTotal counts notification attempts by channel and outcome.
var NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vidhyadham_notifications_total",
	Help: "Notification delivery attempts by channel and outcome.",
}, []string{"channel", "outcome"})
