// Package runtime holds the machines a program under test is made of and the
// interface the scheduler drives programs through.
package runtime

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	vs "github.com/p-org/psym/pkg/valuesummary"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

// ErrSafetyViolation is returned by Program.Step when the program under test
// reaches a state it asserts against.
var ErrSafetyViolation = errors.New("safety violation")

// Machine is one actor of a program. Machines are compared by identity and
// live for the whole exploration.
type Machine struct {
	Name string
	ID   int
}

func NewMachine(name string, id int) *Machine {
	return &Machine{Name: name, ID: id}
}

func (m *Machine) String() string {
	return fmt.Sprintf("%s(%d)", m.Name, m.ID)
}

// Program is a system under test driven one send at a time.
type Program interface {
	Name() string
	// Reset puts every machine back in its initial state.
	Reset()
	// SenderChoices returns one summary per machine that can send next,
	// holding the machine under the guard it is enabled under.
	SenderChoices() []*vs.PrimitiveVS[*Machine]
	// Step lets the machines held by sender send one message each, under
	// their guards. It wraps ErrSafetyViolation when an assertion fails.
	Step(sender *vs.PrimitiveVS[*Machine]) error
	// Dependent reports whether steps of a and b may not commute.
	Dependent(a, b *Machine) bool
}

// Machines lists the machines a sender summary may hold, in stored order
// and without repetition. Keys that do not denote a finite set are skipped.
func Machines(sender *vs.PrimitiveVS[*Machine]) []*Machine {
	var res []*Machine
	seen := sets.New[*Machine]()
	for _, d := range sender.Values() {
		ms, err := domain.ToConcrete(d)
		if err != nil {
			continue
		}
		for _, m := range ms {
			if !seen.Has(m) {
				seen.Insert(m)
				res = append(res, m)
			}
		}
	}
	return res
}
