package domain

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Disjunctive denotes an explicit, non-empty set of values. Elements keep
// their insertion order so iteration and printing are deterministic.
//
// Only widening Disjunctive domains join. A non-widening one behaves as a
// fixed set: value summaries keep it apart from every other key.
type Disjunctive[T comparable] struct {
	elems []T
	set   sets.Set[T]
	widen bool
}

var _ Domain[int] = Disjunctive[int]{}

// NewDisjunctive returns a non-widening domain denoting values. Duplicates
// are dropped. It panics with ErrEmptyDomain if values is empty.
func NewDisjunctive[T comparable](values ...T) Disjunctive[T] {
	if len(values) == 0 {
		panic(ErrEmptyDomain)
	}
	d := Disjunctive[T]{set: sets.New[T]()}
	for _, v := range values {
		if d.set.Has(v) {
			continue
		}
		d.set.Insert(v)
		d.elems = append(d.elems, v)
	}
	return d
}

// Widening returns a copy of d that may be joined with other widening
// Disjunctive domains of the same element kind.
func (d Disjunctive[T]) Widening() Disjunctive[T] {
	d.widen = true
	return d
}

func (d Disjunctive[T]) IsWidening() bool {
	return d.widen
}

// Values returns the denoted values in insertion order.
func (d Disjunctive[T]) Values() []T {
	return append([]T(nil), d.elems...)
}

func (d Disjunctive[T]) Len() int {
	return len(d.elems)
}

func (d Disjunctive[T]) Kind() Kind {
	return KindDisjunctive
}

func (d Disjunctive[T]) Contains(v T) bool {
	return d.set.Has(v)
}

func (d Disjunctive[T]) CanJoin(o Domain[T]) bool {
	od, ok := o.(Disjunctive[T])
	if !ok || !d.widen || !od.widen {
		return false
	}
	return sameRuntimeKind(d.elems[0], od.elems[0])
}

func (d Disjunctive[T]) Join(o Domain[T]) Domain[T] {
	if !d.CanJoin(o) {
		panic(illegalJoin[T](d, o))
	}
	od := o.(Disjunctive[T])
	res := NewDisjunctive(append(d.Values(), od.elems...)...)
	res.widen = true
	return res
}

func (d Disjunctive[T]) EqualTo(o Domain[T]) Domain[bool] {
	return compare[T](d, o)
}

func (d Disjunctive[T]) Concretize() ([]T, error) {
	return d.Values(), nil
}

func (d Disjunctive[T]) Identical(o Domain[T]) bool {
	od, ok := o.(Disjunctive[T])
	return ok && d.set.Equal(od.set)
}

func (d Disjunctive[T]) Fingerprint() uint64 {
	return hashOf(KindDisjunctive, d.elems)
}

func (d Disjunctive[T]) String() string {
	s := make([]string, len(d.elems))
	for i, v := range d.elems {
		s[i] = fmt.Sprint(v)
	}
	return "{" + strings.Join(s, ", ") + "}"
}

func (d Disjunctive[T]) points() []T {
	return d.elems
}

func (d Disjunctive[T]) single() (T, bool) {
	if len(d.elems) == 1 {
		return d.elems[0], true
	}
	var zero T
	return zero, false
}

func (d Disjunctive[T]) widening() bool {
	return d.widen
}
