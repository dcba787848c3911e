package scheduler

import (
	"github.com/sirupsen/logrus"

	"github.com/p-org/psym/pkg/config"
	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/metrics"
	"github.com/p-org/psym/pkg/runtime"
	vs "github.com/p-org/psym/pkg/valuesummary"
)

// DPORScheduler narrows each step of an iteration to the senders its
// DPORSchedule planned, and keeps the schedule's backtrack and sleep sets up
// to date between iterations.
type DPORScheduler struct {
	*IterativeBoundedScheduler

	// pending is the choice whose to-explore entries are being consumed.
	// The guards of its entries belong to an earlier iteration; only the
	// machines they hold are used.
	pending DPORChoice
}

var _ Scheduler = &DPORScheduler{}

func NewDPORScheduler(cfg *config.Config, program runtime.Program, logger logrus.FieldLogger) *DPORScheduler {
	d := &DPORScheduler{
		IterativeBoundedScheduler: NewIterativeBoundedScheduler(cfg, program, logger),
	}
	d.self = d
	d.kind = metrics.DPORScheduler
	d.schedule = d.NewSchedule()
	return d
}

func (d *DPORScheduler) NewSchedule() Schedule {
	return NewMemoryDPORSchedule(d.program.Dependent)
}

func (d *DPORScheduler) dporSchedule() DPORSchedule {
	return d.schedule.(DPORSchedule)
}

func (d *DPORScheduler) NextSenderChoices() []*SenderChoice {
	choices := d.IterativeBoundedScheduler.NextSenderChoices()
	if d.pending == nil || len(d.pending.ToExplore()) == 0 {
		d.pending = d.dporSchedule().DPORChoice(d.Depth())
	}
	toExplore := d.pending.ToExplore()
	if len(toExplore) == 0 {
		return choices
	}

	named := runtime.Machines(toExplore[0])
	narrowed := make([]*SenderChoice, 0, len(choices))
	for _, c := range choices {
		canExplore := guard.False()
		for _, m := range named {
			canExplore = canExplore.Or(vs.BoolGuard(c.SymbolicEquals(vs.New(m), c.Universe())))
		}
		narrowed = append(narrowed, c.Restrict(canExplore))
	}
	d.pending.RemoveFirst()

	metrics.DPORNarrowedSteps.Inc()
	d.logger.WithFields(logrus.Fields{
		"depth":   d.Depth(),
		"senders": named,
	}).Debug("narrowed sender choices")
	return narrowed
}

// PostIterationCleanup builds the next to-explore sets before the base
// cleanup restarts the schedule, and updates sleep sets after it.
func (d *DPORScheduler) PostIterationCleanup() {
	schedule := d.dporSchedule()
	schedule.BuildNextToExplore()
	d.IterativeBoundedScheduler.PostIterationCleanup()
	schedule.UpdateSleepSets()
	d.pending = nil
}
