// Package valuesummary implements value summaries: immutable maps from
// abstract domains to the guards under which a variable holds them.
//
// The guards of a summary are pairwise exclusive, so a summary partitions
// the executions of its universe among its values. Every operation returns a
// new summary; nothing is modified in place.
package valuesummary

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

// ErrNonExclusiveGuards is raised when invariant checking is enabled and a
// summary would hold two values under overlapping guards.
var ErrNonExclusiveGuards = errors.New("value summary guards are not mutually exclusive")

var checkInvariants atomic.Bool

// SetInvariantChecks enables or disables exclusivity checks on summary
// construction. Checks cost one conjunction per pair of entries.
func SetInvariantChecks(enabled bool) {
	checkInvariants.Store(enabled)
}

func InvariantChecks() bool {
	return checkInvariants.Load()
}

// GuardedValue pairs a domain with the guard under which it is held.
type GuardedValue[T comparable] struct {
	Value domain.Domain[T]
	Guard guard.Guard
}

// PrimitiveVS is a value summary over values of T.
type PrimitiveVS[T comparable] struct {
	entries []GuardedValue[T]
	index   map[uint64][]int

	universeOnce sync.Once
	universe     guard.Guard
}

// Empty returns the summary with no values.
func Empty[T comparable]() *PrimitiveVS[T] {
	return &PrimitiveVS[T]{}
}

// New returns a summary holding v under true, wrapped by the Default
// domain registry.
func New[T comparable](v T) *PrimitiveVS[T] {
	return FromDomain(domain.FromConcrete(v))
}

// FromDomain returns a summary holding d under true.
func FromDomain[T comparable](d domain.Domain[T]) *PrimitiveVS[T] {
	return build([]GuardedValue[T]{{Value: d, Guard: guard.True()}})
}

// FromGuardedValues builds a summary from entries whose guards the caller
// guarantees to be mutually exclusive. Entries with false guards are
// dropped and identical keys are combined.
func FromGuardedValues[T comparable](gvs ...GuardedValue[T]) *PrimitiveVS[T] {
	vs := build(gvs)
	if InvariantChecks() {
		vs.mustBeExclusive()
	}
	return vs
}

// build is the single constructor every operation goes through.
func build[T comparable](gvs []GuardedValue[T]) *PrimitiveVS[T] {
	vs := &PrimitiveVS[T]{}
	for _, gv := range gvs {
		if gv.Guard.IsFalse() {
			continue
		}
		if i, ok := vs.find(gv.Value); ok {
			vs.entries[i].Guard = vs.entries[i].Guard.Or(gv.Guard)
			continue
		}
		vs.add(gv)
	}
	return vs
}

func (vs *PrimitiveVS[T]) add(gv GuardedValue[T]) {
	if vs.index == nil {
		vs.index = make(map[uint64][]int)
	}
	fp := gv.Value.Fingerprint()
	vs.index[fp] = append(vs.index[fp], len(vs.entries))
	vs.entries = append(vs.entries, gv)
}

func (vs *PrimitiveVS[T]) find(d domain.Domain[T]) (int, bool) {
	for _, i := range vs.index[d.Fingerprint()] {
		if vs.entries[i].Value.Identical(d) {
			return i, true
		}
	}
	return 0, false
}

func (vs *PrimitiveVS[T]) mustBeExclusive() {
	for i := range vs.entries {
		for j := i + 1; j < len(vs.entries); j++ {
			if !vs.entries[i].Guard.And(vs.entries[j].Guard).IsFalse() {
				panic(errors.Wrapf(ErrNonExclusiveGuards, "%s and %s", vs.entries[i].Value, vs.entries[j].Value))
			}
		}
	}
}

// GuardedValues returns the entries in stored order. The slice is a copy.
func (vs *PrimitiveVS[T]) GuardedValues() []GuardedValue[T] {
	return append([]GuardedValue[T](nil), vs.entries...)
}

// Values returns the keys in stored order.
func (vs *PrimitiveVS[T]) Values() []domain.Domain[T] {
	res := make([]domain.Domain[T], len(vs.entries))
	for i, e := range vs.entries {
		res[i] = e.Value
	}
	return res
}

func (vs *PrimitiveVS[T]) Len() int {
	return len(vs.entries)
}

func (vs *PrimitiveVS[T]) IsEmpty() bool {
	return len(vs.entries) == 0
}

// Universe returns the disjunction of all guards: the executions under
// which the summary holds some value.
func (vs *PrimitiveVS[T]) Universe() guard.Guard {
	vs.universeOnce.Do(func() {
		gs := make([]guard.Guard, len(vs.entries))
		for i, e := range vs.entries {
			gs[i] = e.Guard
		}
		vs.universe = guard.OrMany(gs...)
	})
	return vs.universe
}

// HasDomain reports whether d is one of the keys.
func (vs *PrimitiveVS[T]) HasDomain(d domain.Domain[T]) bool {
	_, ok := vs.find(d)
	return ok
}

// GuardForDomain returns the guard stored for key d, or false.
func (vs *PrimitiveVS[T]) GuardForDomain(d domain.Domain[T]) guard.Guard {
	if i, ok := vs.find(d); ok {
		return vs.entries[i].Guard
	}
	return guard.False()
}

// HasValue reports whether v may be held.
func (vs *PrimitiveVS[T]) HasValue(v T) bool {
	return !vs.GuardFor(v).IsFalse()
}

// GuardFor returns the union of the guards of every key that contains v.
func (vs *PrimitiveVS[T]) GuardFor(v T) guard.Guard {
	res := guard.False()
	for _, e := range vs.entries {
		if e.Value.Contains(v) {
			res = res.Or(e.Guard)
		}
	}
	return res
}

// Restrict keeps the part of every entry that lies within g.
func (vs *PrimitiveVS[T]) Restrict(g guard.Guard) *PrimitiveVS[T] {
	if g.Equal(vs.Universe()) {
		return vs
	}
	res := make([]GuardedValue[T], 0, len(vs.entries))
	for _, e := range vs.entries {
		res = append(res, GuardedValue[T]{Value: e.Value, Guard: e.Guard.And(g)})
	}
	return build(res)
}

// Merge combines vs with others. An incoming entry whose key can join an
// existing key replaces that key by the join, under the union of both
// guards; otherwise it is combined with an identical key or appended.
func (vs *PrimitiveVS[T]) Merge(others ...*PrimitiveVS[T]) *PrimitiveVS[T] {
	res := vs.GuardedValues()
	for _, o := range others {
		for _, in := range o.entries {
			joinWith := -1
			for i, e := range res {
				// canJoin is assumed transitive within one summary, so at
				// most one key qualifies.
				if in.Value.CanJoin(e.Value) {
					joinWith = i
				}
			}
			if joinWith >= 0 {
				e := res[joinWith]
				res[joinWith] = GuardedValue[T]{
					Value: domain.Join(in.Value, e.Value),
					Guard: in.Guard.Or(e.Guard),
				}
				continue
			}
			res = append(res, in)
		}
	}
	merged := build(res)
	if InvariantChecks() {
		merged.mustBeExclusive()
	}
	return merged
}

// UpdateUnderGuard replaces, under g, the contents of vs with those of
// val.
func (vs *PrimitiveVS[T]) UpdateUnderGuard(g guard.Guard, val *PrimitiveVS[T]) *PrimitiveVS[T] {
	return vs.Restrict(g.Not()).Merge(val.Restrict(g))
}

// Remove drops the executions under which vs holds a key of rm.
//
// Deprecated: restrict by the negation of a guard obtained from GuardFor
// instead.
func (vs *PrimitiveVS[T]) Remove(rm *PrimitiveVS[T]) *PrimitiveVS[T] {
	toRemove := guard.False()
	for _, e := range rm.entries {
		toRemove = toRemove.Or(vs.Restrict(e.Guard).GuardForDomain(e.Value))
	}
	return vs.Restrict(toRemove.Not())
}

func (vs *PrimitiveVS[T]) String() string {
	s := make([]string, len(vs.entries))
	for i, e := range vs.entries {
		s[i] = e.Value.String() + " @ " + e.Guard.String()
	}
	return "[" + strings.Join(s, "; ") + "]"
}
