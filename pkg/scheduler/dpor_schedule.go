package scheduler

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/p-org/psym/pkg/runtime"
	vs "github.com/p-org/psym/pkg/valuesummary"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

type dporChoice struct {
	enabled   []*runtime.Machine
	picked    []*runtime.Machine
	toExplore []*SenderChoice

	backtrack sets.Set[*runtime.Machine]
	explored  sets.Set[*runtime.Machine]
	sleep     sets.Set[*runtime.Machine]
}

func newDPORChoice() *dporChoice {
	return &dporChoice{
		backtrack: sets.New[*runtime.Machine](),
		explored:  sets.New[*runtime.Machine](),
		sleep:     sets.New[*runtime.Machine](),
	}
}

func (c *dporChoice) ToExplore() []*SenderChoice {
	return c.toExplore
}

func (c *dporChoice) RemoveFirst() {
	if len(c.toExplore) > 0 {
		c.toExplore = c.toExplore[1:]
	}
}

// MemoryDPORSchedule plans iterations with dynamic partial-order reduction:
// a sender is only tried at an earlier depth when a later step depends on
// it, and senders whose subtrees were explored are put to sleep there.
type MemoryDPORSchedule struct {
	dependent func(a, b *runtime.Machine) bool
	choices   []*dporChoice
	// next is the depth BuildNextToExplore backtracked to, or -1.
	next int
}

var _ DPORSchedule = &MemoryDPORSchedule{}

func NewMemoryDPORSchedule(dependent func(a, b *runtime.Machine) bool) *MemoryDPORSchedule {
	return &MemoryDPORSchedule{dependent: dependent, next: -1}
}

func (s *MemoryDPORSchedule) Record(depth int, candidates, picked []*SenderChoice) {
	chosen := machinesOf(picked)
	if depth < len(s.choices) {
		// Replayed depths see narrowed candidates; enabled stays as first
		// recorded.
		c := s.choices[depth]
		c.picked = chosen
		c.explored.Insert(chosen...)
		return
	}

	c := newDPORChoice()
	c.enabled, c.picked = machinesOf(candidates), chosen
	c.explored.Insert(chosen...)
	if depth > 0 {
		prev := s.choices[depth-1]
		for q := range prev.sleep {
			if !s.dependsOnAny(q, prev.picked) {
				c.sleep.Insert(q)
			}
		}
	}
	s.choices = append(s.choices, c)
}

func (s *MemoryDPORSchedule) dependsOnAny(q *runtime.Machine, ms []*runtime.Machine) bool {
	for _, p := range ms {
		if s.dependent(p, q) {
			return true
		}
	}
	return false
}

// Planned is always empty: replay goes through the to-explore entries.
func (s *MemoryDPORSchedule) Planned(int) ([]*runtime.Machine, bool) {
	return nil, false
}

func (s *MemoryDPORSchedule) Len() int {
	return len(s.choices)
}

// DPORChoice returns the choice kept for depth. Depths not recorded yet get
// an empty choice that is not stored.
func (s *MemoryDPORSchedule) DPORChoice(depth int) DPORChoice {
	if depth < len(s.choices) {
		return s.choices[depth]
	}
	return newDPORChoice()
}

func (s *MemoryDPORSchedule) BuildNextToExplore() bool {
	s.next = -1
	s.addBacktrackPoints()

	for d := len(s.choices) - 1; d >= 0; d-- {
		c := s.choices[d]
		var alt *runtime.Machine
		for _, m := range c.enabled {
			if c.backtrack.Has(m) && !c.explored.Has(m) && !c.sleep.Has(m) {
				alt = m
				break
			}
		}
		if alt == nil {
			continue
		}

		for _, prefix := range s.choices[:d] {
			prefix.toExplore = []*SenderChoice{senders(prefix.picked)}
		}
		c.toExplore = []*SenderChoice{vs.New(alt)}
		s.next = d
		return true
	}
	return false
}

// addBacktrackPoints finds, for every sender q picked at depth j, the latest
// earlier depth i whose pick depends on q, and asks for q to be tried at i.
// When q was not enabled at i every sender enabled there is tried instead.
func (s *MemoryDPORSchedule) addBacktrackPoints() {
	for j, cj := range s.choices {
		for _, q := range cj.picked {
			for i := j - 1; i >= 0; i-- {
				ci := s.choices[i]
				if !s.conflicts(ci.picked, q) {
					continue
				}
				if contains(ci.enabled, q) {
					ci.backtrack.Insert(q)
				} else {
					ci.backtrack.Insert(ci.enabled...)
				}
				break
			}
		}
	}
}

func (s *MemoryDPORSchedule) conflicts(ps []*runtime.Machine, q *runtime.Machine) bool {
	for _, p := range ps {
		if p != q && s.dependent(p, q) {
			return true
		}
	}
	return false
}

// Restart drops the choices below the depth BuildNextToExplore backtracked
// to; they are recorded anew by the next iteration.
func (s *MemoryDPORSchedule) Restart() bool {
	if s.next < 0 {
		s.choices = nil
		return false
	}
	s.choices = s.choices[:s.next+1]
	return true
}

// UpdateSleepSets puts every sender explored at the backtrack depth to
// sleep there.
func (s *MemoryDPORSchedule) UpdateSleepSets() {
	if s.next < 0 || s.next >= len(s.choices) {
		return
	}
	c := s.choices[s.next]
	c.sleep.Insert(c.explored.UnsortedList()...)
}

func senders(ms []*runtime.Machine) *SenderChoice {
	if len(ms) == 0 {
		return vs.Empty[*runtime.Machine]()
	}
	return vs.FromDomain(domain.FromSet(ms...))
}

func contains(ms []*runtime.Machine, m *runtime.Machine) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}
