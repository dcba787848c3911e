package scheduler

//go:generate mockgen -destination=mock_schedule.go -package=scheduler github.com/p-org/psym/pkg/scheduler DPORSchedule

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/runtime"
	vs "github.com/p-org/psym/pkg/valuesummary"
)

// SenderChoice is a summary of the machines that may send at one step.
type SenderChoice = vs.PrimitiveVS[*runtime.Machine]

// Schedule is the record of one iteration's choices. It plans which prefix
// the next iteration replays.
type Schedule interface {
	// Record stores the candidates enabled at depth and the ones picked.
	Record(depth int, candidates, picked []*SenderChoice)
	// Planned returns the senders the current iteration must replay at
	// depth, if any.
	Planned(depth int) ([]*runtime.Machine, bool)
	// Len is the number of depths recorded.
	Len() int
	// Restart prepares the next iteration and reports whether there is one.
	Restart() bool
}

// DPORChoice is the part of a DPORSchedule kept for one depth.
type DPORChoice interface {
	// ToExplore lists the senders to narrow the candidates to, one entry per
	// step, front first.
	ToExplore() []*SenderChoice
	RemoveFirst()
}

// DPORSchedule is a Schedule that plans iterations by dynamic partial-order
// reduction. BuildNextToExplore must run before Restart and UpdateSleepSets
// after it.
type DPORSchedule interface {
	Schedule
	DPORChoice(depth int) DPORChoice
	// BuildNextToExplore computes backtrack points from the iteration just
	// finished and plans the next one. It reports whether one was planned.
	BuildNextToExplore() bool
	UpdateSleepSets()
}

type record struct {
	enabled   []*runtime.Machine
	picked    []*runtime.Machine
	backtrack []*runtime.Machine
}

// MemorySchedule explores every interleaving: each sender left out at a
// depth is tried there by a later iteration, deepest depth first.
type MemorySchedule struct {
	records []*record
	replay  int
}

var _ Schedule = &MemorySchedule{}

func NewMemorySchedule() *MemorySchedule {
	return &MemorySchedule{}
}

func (s *MemorySchedule) Record(depth int, candidates, picked []*SenderChoice) {
	enabled, chosen := machinesOf(candidates), machinesOf(picked)
	if depth < len(s.records) {
		r := s.records[depth]
		r.enabled, r.picked = enabled, chosen
		return
	}
	s.records = append(s.records, &record{
		enabled:   enabled,
		picked:    chosen,
		backtrack: without(enabled, chosen),
	})
}

func (s *MemorySchedule) Planned(depth int) ([]*runtime.Machine, bool) {
	if depth >= s.replay || depth >= len(s.records) {
		return nil, false
	}
	return s.records[depth].picked, true
}

func (s *MemorySchedule) Len() int {
	return len(s.records)
}

func (s *MemorySchedule) Restart() bool {
	for d := len(s.records) - 1; d >= 0; d-- {
		r := s.records[d]
		if len(r.backtrack) == 0 {
			continue
		}
		r.picked = []*runtime.Machine{r.backtrack[0]}
		r.backtrack = r.backtrack[1:]
		s.records = s.records[:d+1]
		s.replay = d + 1
		return true
	}
	s.records = nil
	s.replay = 0
	return false
}

func machinesOf(choices []*SenderChoice) []*runtime.Machine {
	var res []*runtime.Machine
	seen := sets.New[*runtime.Machine]()
	for _, c := range choices {
		for _, m := range runtime.Machines(c) {
			if !seen.Has(m) {
				seen.Insert(m)
				res = append(res, m)
			}
		}
	}
	return res
}

func without(ms, drop []*runtime.Machine) []*runtime.Machine {
	skip := sets.New(drop...)
	var res []*runtime.Machine
	for _, m := range ms {
		if !skip.Has(m) {
			res = append(res, m)
		}
	}
	return res
}

// restrictTo keeps, of every candidate, the part that holds one of ms.
// Candidates that hold none are dropped.
func restrictTo(candidates []*SenderChoice, ms []*runtime.Machine) []*SenderChoice {
	var res []*SenderChoice
	for _, c := range candidates {
		g := guard.False()
		for _, m := range ms {
			g = g.Or(c.GuardFor(m))
		}
		if r := c.Restrict(g); !r.IsEmpty() {
			res = append(res, r)
		}
	}
	return res
}
