// Package explorer runs a scheduler's iterations to completion and reports
// how the run ended.
package explorer

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"k8s.io/utils/clock"

	"github.com/p-org/psym/pkg/metrics"
	"github.com/p-org/psym/pkg/runtime"
	"github.com/p-org/psym/pkg/scheduler"
)

// InternalError is a broken invariant of the symbolic core caught during an
// iteration. It is never a property of the program under test.
type InternalError struct {
	Iteration int
	Depth     int
	Cause     error
	Stack     []byte
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in iteration %d at depth %d: %v", e.Iteration, e.Depth, e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// Report summarises a run.
type Report struct {
	RunID   string
	Outcome string
	// Iterations is the number of iterations that ran to their end.
	Iterations int
	// BoundedIterations counts the iterations cut off at the depth bound.
	BoundedIterations int
	MaxDepth          int
	Exhausted         bool
	// Violation is the safety violation the program reported, if any.
	Violation error
	Duration  time.Duration
}

// Option applies a configuration option to a run.
type Option func(c *runConfig)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithRunID tags the run's log lines and report.
func WithRunID(id string) Option {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithClock sets the clock the run duration is measured with.
func WithClock(c clock.PassiveClock) Option {
	return func(rc *runConfig) {
		rc.clock = c
	}
}

// WithProgressInterval sets how often progress is logged at info level.
// Every iteration is still logged at debug level.
func WithProgressInterval(d time.Duration) Option {
	return func(c *runConfig) {
		c.progressInterval = d
	}
}

type runConfig struct {
	logger           logrus.FieldLogger
	runID            string
	clock            clock.PassiveClock
	progressInterval time.Duration
}

func (c *runConfig) apply(options []Option) {
	for _, o := range options {
		o(c)
	}
}

func defaultRunConfig() *runConfig {
	return &runConfig{
		logger:           logrus.New(),
		clock:            clock.RealClock{},
		progressInterval: 10 * time.Second,
	}
}

// Run drives s until it is done, ctx is cancelled, the program reports a
// safety violation or an iteration fails.
//
// A safety violation ends the run with the Failed outcome and a nil error;
// the violation is in the report. Cancellation returns ctx.Err(). Any other
// failure, including an *InternalError, is returned.
func Run(ctx context.Context, s scheduler.Scheduler, options ...Option) (*Report, error) {
	config := defaultRunConfig()
	config.apply(options)
	logger := config.logger
	if config.runID != "" {
		logger = logger.WithField("run", config.runID)
	}

	start := config.clock.Now()
	report := &Report{RunID: config.runID}
	progress := &rate.Sometimes{Interval: config.progressInterval}
	finish := func(outcome string) *Report {
		report.Outcome = outcome
		report.Exhausted = s.Exhausted()
		report.Duration = config.clock.Since(start)
		metrics.Runs.WithLabelValues(outcome).Inc()
		logger.WithFields(logrus.Fields{
			"outcome":    outcome,
			"iterations": report.Iterations,
			"bounded":    report.BoundedIterations,
			"maxDepth":   report.MaxDepth,
			"duration":   report.Duration,
		}).Info("exploration finished")
		return report
	}

	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return finish(metrics.Cancelled), err
		}

		err := iterate(ctx, s)
		depth := s.Depth()
		if depth > report.MaxDepth {
			report.MaxDepth = depth
		}

		var internal *InternalError
		switch {
		case err == nil:
		case errors.Is(err, scheduler.ErrDepthBound):
			report.BoundedIterations++
			logger.WithError(err).Debug("iteration cut off")
		case errors.Is(err, runtime.ErrSafetyViolation):
			report.Violation = err
			logger.WithError(err).WithField("iteration", s.Iteration()).Warn("safety violation")
			return finish(metrics.Failed), nil
		case errors.As(err, &internal):
			metrics.InternalErrors.Inc()
			logger.WithError(internal.Cause).WithFields(logrus.Fields{
				"iteration": internal.Iteration,
				"depth":     internal.Depth,
			}).Errorf("aborting run\n%s", internal.Stack)
			return finish(metrics.Failed), err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return finish(metrics.Cancelled), err
		default:
			return finish(metrics.Failed), err
		}

		if err := cleanup(s); err != nil {
			metrics.InternalErrors.Inc()
			logger.WithError(err).Error("aborting run")
			return finish(metrics.Failed), err
		}
		report.Iterations++
		metrics.Iterations.Inc()
		metrics.IterationDepth.Observe(float64(depth))

		fields := logrus.Fields{
			"iterations": report.Iterations,
			"depth":      depth,
		}
		logger.WithFields(fields).Debug("iteration done")
		progress.Do(func() {
			logger.WithFields(fields).Info("exploring")
		})
	}

	if s.Exhausted() {
		return finish(metrics.Completed), nil
	}
	return finish(metrics.Bounded), nil
}

// iterate runs one iteration up to its last step. ctx is checked between
// steps.
func iterate(ctx context.Context, s scheduler.Scheduler) (err error) {
	defer recoverInternal(s, &err)

	s.StartIteration()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := s.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func cleanup(s scheduler.Scheduler) (err error) {
	defer recoverInternal(s, &err)
	s.PostIterationCleanup()
	return nil
}

func recoverInternal(s scheduler.Scheduler, err *error) {
	r := recover()
	if r == nil {
		return
	}
	cause, ok := r.(error)
	if !ok {
		cause = errors.Errorf("%v", r)
	}
	*err = &InternalError{
		Iteration: s.Iteration(),
		Depth:     s.Depth(),
		Cause:     cause,
		Stack:     debug.Stack(),
	}
}
