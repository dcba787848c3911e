package domain

import "fmt"

// Concrete denotes exactly one value and never joins.
type Concrete[T comparable] struct {
	value T
}

var _ Domain[int] = Concrete[int]{}

func NewConcrete[T comparable](v T) Concrete[T] {
	return Concrete[T]{value: v}
}

func (c Concrete[T]) Value() T {
	return c.value
}

func (c Concrete[T]) Kind() Kind {
	return KindConcrete
}

func (c Concrete[T]) Contains(v T) bool {
	return c.value == v
}

func (c Concrete[T]) CanJoin(Domain[T]) bool {
	return false
}

func (c Concrete[T]) Join(o Domain[T]) Domain[T] {
	panic(illegalJoin[T](c, o))
}

func (c Concrete[T]) EqualTo(o Domain[T]) Domain[bool] {
	return compare[T](c, o)
}

func (c Concrete[T]) Concretize() ([]T, error) {
	return []T{c.value}, nil
}

func (c Concrete[T]) Identical(o Domain[T]) bool {
	oc, ok := o.(Concrete[T])
	return ok && oc.value == c.value
}

func (c Concrete[T]) Fingerprint() uint64 {
	return hashOf(KindConcrete, []T{c.value})
}

func (c Concrete[T]) String() string {
	return fmt.Sprint(c.value)
}

func (c Concrete[T]) points() []T {
	return []T{c.value}
}

func (c Concrete[T]) single() (T, bool) {
	return c.value, true
}

func (c Concrete[T]) widening() bool {
	return false
}
