package valuesummary

import (
	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

var (
	trueKey  = domain.NewDisjunctive(true)
	falseKey = domain.NewDisjunctive(false)
)

// TrueUnderGuard returns the boolean summary that is true under g and false
// elsewhere.
func TrueUnderGuard(g guard.Guard) *PrimitiveVS[bool] {
	return build([]GuardedValue[bool]{
		{Value: trueKey, Guard: g},
		{Value: falseKey, Guard: g.Not()},
	})
}

// BoolGuard returns the guard under which b may be true.
func BoolGuard(b *PrimitiveVS[bool]) guard.Guard {
	return b.GuardFor(true)
}

// SymbolicEquals compares vs with other under pc. The result is true where
// both summaries hold the same single value and where at least one of them
// holds no value at all; it is false everywhere else within pc.
func (vs *PrimitiveVS[T]) SymbolicEquals(other *PrimitiveVS[T], pc guard.Guard) *PrimitiveVS[bool] {
	eq := guard.False()
	for _, x := range vs.entries {
		xv, err := domain.ToSingle(x.Value)
		if err != nil {
			continue
		}
		for _, y := range other.entries {
			if yv, err := domain.ToSingle(y.Value); err == nil && yv == xv {
				eq = eq.Or(x.Guard.And(y.Guard))
			}
		}
	}
	eq = eq.Or(vs.Universe().And(other.Universe()).Not())
	return build([]GuardedValue[bool]{
		{Value: trueKey, Guard: pc.And(eq)},
		{Value: falseKey, Guard: pc.And(eq.Not())},
	})
}

// DomainSymbolicEquals compares vs with other key by key, keeping the
// comparison abstract: where two overlapping keys may or may not hold equal
// values the result holds a key denoting both outcomes. Outside the overlap of
// both universes the result is true.
func (vs *PrimitiveVS[T]) DomainSymbolicEquals(other *PrimitiveVS[T], pc guard.Guard) *PrimitiveVS[bool] {
	var res []GuardedValue[bool]
	for _, x := range vs.entries {
		for _, y := range other.entries {
			g := pc.And(x.Guard).And(y.Guard)
			if g.IsFalse() {
				continue
			}
			res = append(res, GuardedValue[bool]{Value: y.Value.EqualTo(x.Value), Guard: g})
		}
	}
	res = append(res, GuardedValue[bool]{
		Value: trueKey,
		Guard: pc.And(vs.Universe().And(other.Universe()).Not()),
	})
	return build(res)
}
