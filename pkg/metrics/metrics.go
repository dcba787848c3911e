package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	BackendLabel = "backend"
	ModeLabel    = "mode"
	OutcomeLabel = "outcome"

	Completed = "completed"
	Bounded   = "bounded"
	Cancelled = "cancelled"
	Failed    = "failed"
)

// To add new metrics:
// 1. Register new metrics in Register() below.
// 2. Add appropriate metric updates in the symbolic core or the scheduler.
var (
	GuardVariablesAllocated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psym_guard_variables_allocated_total",
			Help: "Number of fresh guard variables allocated",
		},
		[]string{BackendLabel},
	)

	NondetChoices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psym_nondet_choices_total",
			Help: "Number of nondeterministic choices synthesised",
		},
		[]string{ModeLabel},
	)

	NondetVariables = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "psym_nondet_choice_variables",
			Help:    "Fresh variables allocated per synthesised choice",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
		},
	)

	DPORNarrowedSteps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "psym_dpor_narrowed_steps_total",
			Help: "Scheduling steps whose sender choices were narrowed by a to-explore entry",
		},
	)

	Iterations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "psym_iterations_total",
			Help: "Number of completed exploration iterations",
		},
	)

	IterationDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "psym_iteration_depth",
			Help:    "Depth reached by each exploration iteration",
			Buckets: prometheus.LinearBuckets(0, 4, 10),
		},
	)

	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psym_runs_total",
			Help: "Exploration runs by outcome",
		},
		[]string{OutcomeLabel},
	)

	InternalErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "psym_internal_errors_total",
			Help: "Iterations aborted by a violated internal invariant",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default prometheus registry. It is
// safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(GuardVariablesAllocated)
		prometheus.MustRegister(NondetChoices)
		prometheus.MustRegister(NondetVariables)
		prometheus.MustRegister(DPORNarrowedSteps)
		prometheus.MustRegister(Iterations)
		prometheus.MustRegister(IterationDepth)
		prometheus.MustRegister(Runs)
		prometheus.MustRegister(InternalErrors)
	})
}

// RegisterWith adds every collector to r. Tests use it with a fresh
// registry.
func RegisterWith(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		GuardVariablesAllocated,
		NondetChoices,
		NondetVariables,
		DPORNarrowedSteps,
		Iterations,
		IterationDepth,
		Runs,
		InternalErrors,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
