package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Interval denotes every value in the closed range [low, high].
type Interval[T Number] struct {
	low, high T
}

var _ Domain[int] = Interval[int]{}

// NewInterval panics with ErrEmptyDomain if low > high.
func NewInterval[T Number](low, high T) Interval[T] {
	if low > high {
		panic(errors.Wrapf(ErrEmptyDomain, "interval [%v, %v]", low, high))
	}
	return Interval[T]{low: low, high: high}
}

// Point returns the interval [v, v].
func Point[T Number](v T) Interval[T] {
	return Interval[T]{low: v, high: v}
}

func (i Interval[T]) Low() T {
	return i.low
}

func (i Interval[T]) High() T {
	return i.high
}

func (i Interval[T]) Kind() Kind {
	return KindInterval
}

func (i Interval[T]) Contains(v T) bool {
	return i.low <= v && v <= i.high
}

func (i Interval[T]) CanJoin(o Domain[T]) bool {
	_, ok := o.(Interval[T])
	return ok
}

func (i Interval[T]) Join(o Domain[T]) Domain[T] {
	oi, ok := o.(Interval[T])
	if !ok {
		panic(illegalJoin[T](i, o))
	}
	return Interval[T]{low: min(i.low, oi.low), high: max(i.high, oi.high)}
}

func (i Interval[T]) EqualTo(o Domain[T]) Domain[bool] {
	oi, ok := o.(Interval[T])
	if !ok {
		return compare[T](i, o)
	}
	overlap := i.low <= oi.high && oi.low <= i.high
	same := i.low == i.high && oi.low == oi.high && i.low == oi.low
	return boolDomain(overlap, !same)
}

func (i Interval[T]) Concretize() ([]T, error) {
	if i.low == i.high {
		return []T{i.low}, nil
	}
	return nil, errors.Wrapf(ErrUnbounded, "interval %s", i)
}

func (i Interval[T]) Identical(o Domain[T]) bool {
	oi, ok := o.(Interval[T])
	return ok && oi.low == i.low && oi.high == i.high
}

func (i Interval[T]) Fingerprint() uint64 {
	return hashOf(KindInterval, []T{i.low, i.high})
}

func (i Interval[T]) String() string {
	return fmt.Sprintf("[%v, %v]", i.low, i.high)
}

// MaxPoints bounds the width of an interval that Apply evaluates point by
// point.
const MaxPoints = 1 << 16

func (i Interval[T]) points() []T {
	if i.low == i.high {
		return []T{i.low}
	}
	if !integral[T]() {
		panic(errors.Wrapf(ErrUnbounded, "interval %s", i))
	}
	var pts []T
	for v := i.low; ; v++ {
		if len(pts) == MaxPoints {
			panic(errors.Wrapf(ErrUnbounded, "interval %s is wider than %d", i, MaxPoints))
		}
		pts = append(pts, v)
		if v == i.high {
			return pts
		}
	}
}

func integral[T Number]() bool {
	half := 0.5
	return T(half) == 0
}

func (i Interval[T]) single() (T, bool) {
	return i.low, i.low == i.high
}

func (i Interval[T]) widening() bool {
	return true
}
