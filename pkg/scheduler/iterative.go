// Package scheduler drives a program through bounded iterations, one
// symbolic step at a time, and plans which choices each iteration replays.
package scheduler

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/p-org/psym/pkg/config"
	"github.com/p-org/psym/pkg/metrics"
	"github.com/p-org/psym/pkg/nondet"
	"github.com/p-org/psym/pkg/runtime"
)

// ErrDepthBound is returned by Step when an iteration reaches the maximum
// depth.
var ErrDepthBound = errors.New("depth bound reached")

// Scheduler is implemented by IterativeBoundedScheduler and the schedulers
// that extend it.
type Scheduler interface {
	NewSchedule() Schedule
	Schedule() Schedule
	// NextSenderChoices returns the candidates for the next step, one
	// summary per sender.
	NextSenderChoices() []*SenderChoice
	// StartIteration resets the program for a new iteration.
	StartIteration()
	// Step performs one step. It returns false when the iteration is over.
	Step() (bool, error)
	// PostIterationCleanup plans the next iteration. It is called once per
	// iteration, after the last step.
	PostIterationCleanup()
	Depth() int
	Iteration() int
	// Exhausted reports whether every planned iteration has run.
	Exhausted() bool
	// Done reports whether exploration is over, either exhausted or out of
	// iterations.
	Done() bool
}

// IterativeBoundedScheduler runs iterations of at most MaxDepth steps. At
// each step it merges up to ChoiceBound enabled senders into one symbolic
// choice; the senders it leaves out are tried by later iterations.
type IterativeBoundedScheduler struct {
	// self is the outermost scheduler, so that steps reach the overrides of
	// schedulers embedding this one.
	self Scheduler
	// kind names the scheduler in metrics.
	kind string

	config   *config.Config
	program  runtime.Program
	logger   logrus.FieldLogger
	schedule Schedule

	depth     int
	iteration int
	exhausted bool
}

var _ Scheduler = &IterativeBoundedScheduler{}

func NewIterativeBoundedScheduler(cfg *config.Config, program runtime.Program, logger logrus.FieldLogger) *IterativeBoundedScheduler {
	s := &IterativeBoundedScheduler{
		kind:    metrics.IterativeScheduler,
		config:  cfg,
		program: program,
		logger:  logger,
	}
	s.self = s
	s.schedule = s.NewSchedule()
	return s
}

func (s *IterativeBoundedScheduler) NewSchedule() Schedule {
	return NewMemorySchedule()
}

func (s *IterativeBoundedScheduler) Schedule() Schedule {
	return s.schedule
}

func (s *IterativeBoundedScheduler) Depth() int {
	return s.depth
}

func (s *IterativeBoundedScheduler) Iteration() int {
	return s.iteration
}

func (s *IterativeBoundedScheduler) Exhausted() bool {
	return s.exhausted
}

func (s *IterativeBoundedScheduler) Done() bool {
	if s.exhausted {
		return true
	}
	return s.config.MaxIterations > 0 && s.iteration >= s.config.MaxIterations
}

func (s *IterativeBoundedScheduler) NextSenderChoices() []*SenderChoice {
	return s.program.SenderChoices()
}

func (s *IterativeBoundedScheduler) StartIteration() {
	s.program.Reset()
	s.depth = 0
}

func (s *IterativeBoundedScheduler) Step() (bool, error) {
	if s.depth >= s.config.MaxDepth {
		return false, errors.Wrapf(ErrDepthBound, "iteration %d at depth %d", s.iteration, s.depth)
	}

	var candidates []*SenderChoice
	for _, c := range s.self.NextSenderChoices() {
		if !c.IsEmpty() {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}

	picked := s.pick(candidates)
	s.schedule.Record(s.depth, candidates, picked)
	sender := s.choose(picked)
	metrics.EmitStep(s.kind, s.program.Name(), len(picked))

	s.logger.WithFields(logrus.Fields{
		"iteration": s.iteration,
		"depth":     s.depth,
		"enabled":   len(candidates),
		"picked":    len(picked),
	}).Debug("step")

	if err := s.program.Step(sender); err != nil {
		return false, errors.Wrapf(err, "iteration %d at depth %d", s.iteration, s.depth)
	}
	s.depth++
	return true, nil
}

// pick replays the planned senders if the schedule has a plan for this depth
// and otherwise takes the first ChoiceBound candidates.
func (s *IterativeBoundedScheduler) pick(candidates []*SenderChoice) []*SenderChoice {
	if planned, ok := s.schedule.Planned(s.depth); ok {
		if replay := restrictTo(candidates, planned); len(replay) > 0 {
			return replay
		}
		s.logger.WithField("depth", s.depth).Warn("planned senders are not enabled, continuing without plan")
	}
	if len(candidates) > s.config.ChoiceBound {
		return candidates[:s.config.ChoiceBound]
	}
	return candidates
}

func (s *IterativeBoundedScheduler) choose(picked []*SenderChoice) *SenderChoice {
	if s.config.ChoiceClustering {
		return nondet.Choice(picked)
	}
	return nondet.ChoiceFlat(picked)
}

func (s *IterativeBoundedScheduler) PostIterationCleanup() {
	s.logger.WithFields(logrus.Fields{
		"iteration": s.iteration,
		"depth":     s.depth,
	}).Info("iteration finished")

	s.iteration++
	if !s.schedule.Restart() {
		s.exhausted = true
	}
}
