//go:build experimental_metrics
// +build experimental_metrics

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	schedulerSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psym_scheduler_steps_total",
			Help: "Symbolic steps taken, by scheduler and program",
		},
		[]string{SchedulerLabel, ProgramLabel},
	)
	stepSenders = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "psym_scheduler_step_senders",
			Help:    "Senders merged into one symbolic step",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		},
		[]string{SchedulerLabel},
	)
	prometheus.MustRegister(schedulerSteps, stepSenders)
}
