package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	SchedulerLabel = "scheduler"
	ProgramLabel   = "program"

	// Scheduler names
	IterativeScheduler = "iterative"
	DPORScheduler      = "dpor"
)

var (
	schedulerNames = sets.New(IterativeScheduler, DPORScheduler)

	// Set only when built with experimental_metrics.
	schedulerSteps *prometheus.CounterVec
	stepSenders    *prometheus.HistogramVec
)

// EmitStep records one scheduling step of program that merged picked
// senders. Steps of unknown schedulers are dropped, and nothing is recorded
// unless built with experimental_metrics.
func EmitStep(scheduler, program string, picked int) {
	if schedulerSteps == nil || !schedulerNames.Has(scheduler) {
		return
	}
	schedulerSteps.WithLabelValues(scheduler, program).Inc()
	stepSenders.WithLabelValues(scheduler).Observe(float64(picked))
}
