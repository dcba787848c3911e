package valuesummary

import (
	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

// Apply maps f over every key of vs. Guards are preserved; keys that map to
// the same domain share one entry.
func Apply[T, U comparable](vs *PrimitiveVS[T], f func(T) U) *PrimitiveVS[U] {
	res := make([]GuardedValue[U], 0, len(vs.entries))
	for _, e := range vs.entries {
		res = append(res, GuardedValue[U]{Value: domain.Apply(e.Value, f), Guard: e.Guard})
	}
	return build(res)
}

// Apply2 zips a and b under f, with one entry per pair of entries whose
// guards intersect.
func Apply2[T, U, R comparable](a *PrimitiveVS[T], b *PrimitiveVS[U], f func(T, U) R) *PrimitiveVS[R] {
	var res []GuardedValue[R]
	for _, x := range a.entries {
		for _, y := range b.entries {
			g := x.Guard.And(y.Guard)
			if g.IsFalse() {
				continue
			}
			res = append(res, GuardedValue[R]{Value: domain.Apply2(x.Value, y.Value, f), Guard: g})
		}
	}
	return build(res)
}

// ApplyInto maps f over vs and merges the images into mergeWith, so that
// images which can join keys of mergeWith are widened into them.
func ApplyInto[T, U comparable](vs *PrimitiveVS[T], mergeWith *PrimitiveVS[U], f func(T) U) *PrimitiveVS[U] {
	toMerge := make([]*PrimitiveVS[U], 0, len(vs.entries))
	for _, e := range vs.entries {
		toMerge = append(toMerge, FromDomain(domain.Apply(e.Value, f)).Restrict(e.Guard))
	}
	return mergeWith.Merge(toMerge...)
}

// ConcreteValue is a single concrete value held under a guard.
type ConcreteValue[T comparable] struct {
	Value T
	Guard guard.Guard
}

// ToConcrete lists the concrete values held by vs. It fails with
// domain.ErrUnbounded or domain.ErrNotSingleton if a key denotes anything
// other than exactly one value.
func (vs *PrimitiveVS[T]) ToConcrete() ([]ConcreteValue[T], error) {
	var res []ConcreteValue[T]
	pos := make(map[T]int)
	for _, e := range vs.entries {
		v, err := domain.ToSingle(e.Value)
		if err != nil {
			return nil, err
		}
		if i, ok := pos[v]; ok {
			res[i].Guard = res[i].Guard.Or(e.Guard)
			continue
		}
		pos[v] = len(res)
		res = append(res, ConcreteValue[T]{Value: v, Guard: e.Guard})
	}
	return res, nil
}

// FromConcrete wraps every value with the Default domain registry.
func FromConcrete[T comparable](cvs ...ConcreteValue[T]) *PrimitiveVS[T] {
	gvs := make([]GuardedValue[T], len(cvs))
	for i, cv := range cvs {
		gvs[i] = GuardedValue[T]{Value: domain.FromConcrete(cv.Value), Guard: cv.Guard}
	}
	return FromGuardedValues(gvs...)
}
