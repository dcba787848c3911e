package domain

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// Abstraction selects how concrete values of a type are wrapped into
// domains.
type Abstraction int

const (
	// AbstractionNone wraps values into non-widening Disjunctive domains:
	// distinct values stay distinct keys of a value summary.
	AbstractionNone Abstraction = iota
	// AbstractionDisjunctive wraps values into widening Disjunctive domains
	// that merge into explicit sets.
	AbstractionDisjunctive
	// AbstractionInterval wraps numeric values into intervals. Types are
	// registered for it with RegisterInterval.
	AbstractionInterval
)

func (a Abstraction) String() string {
	switch a {
	case AbstractionNone:
		return "none"
	case AbstractionDisjunctive:
		return "disjunctive"
	case AbstractionInterval:
		return "interval"
	default:
		return fmt.Sprintf("abstraction(%d)", int(a))
	}
}

type policy struct {
	abstraction Abstraction
	// fromSet builds the interval covering a non-empty []T, stored as any
	// since the registry is keyed by runtime type.
	fromSet func(values any) any
}

// Registry records which abstraction applies to each element type. The
// zero value is not usable; use NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	policies map[reflect.Type]policy
}

// Default is the registry used by the package-level constructors.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{policies: make(map[reflect.Type]policy)}
}

// Reset forgets every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies = make(map[reflect.Type]policy)
}

func (r *Registry) lookup(t reflect.Type) policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policies[t]
}

// Abstraction returns the abstraction registered for t.
func (r *Registry) Abstraction(t reflect.Type) Abstraction {
	return r.lookup(t).abstraction
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register sets the abstraction of T to AbstractionNone or
// AbstractionDisjunctive. Numeric types are registered for intervals with
// RegisterInterval.
func Register[T comparable](r *Registry, a Abstraction) error {
	switch a {
	case AbstractionNone, AbstractionDisjunctive:
	default:
		return errors.Errorf("abstraction %s cannot be registered for %s", a, typeOf[T]())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[typeOf[T]()] = policy{abstraction: a}
	return nil
}

// RegisterInterval makes FromConcrete and FromSet produce intervals for T.
func RegisterInterval[T Number](r *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[typeOf[T]()] = policy{
		abstraction: AbstractionInterval,
		fromSet: func(values any) any {
			vs := values.([]T)
			lo, hi := vs[0], vs[0]
			for _, v := range vs[1:] {
				lo, hi = min(lo, v), max(hi, v)
			}
			return Interval[T]{low: lo, high: hi}
		},
	}
}

// FromConcrete wraps v according to the Default registry.
func FromConcrete[T comparable](v T) Domain[T] {
	return FromSetIn(Default, v)
}

// FromSet wraps a non-empty set of values according to the Default
// registry.
func FromSet[T comparable](values ...T) Domain[T] {
	return FromSetIn(Default, values...)
}

// FromSetIn wraps a non-empty set of values according to r.
func FromSetIn[T comparable](r *Registry, values ...T) Domain[T] {
	if len(values) == 0 {
		panic(ErrEmptyDomain)
	}
	p := r.lookup(typeOf[T]())
	switch p.abstraction {
	case AbstractionInterval:
		return p.fromSet(values).(Domain[T])
	case AbstractionDisjunctive:
		return NewDisjunctive(values...).Widening()
	default:
		return NewDisjunctive(values...)
	}
}

// ToConcrete expands d, failing with ErrUnbounded for abstractions that do
// not denote a finite set.
func ToConcrete[T comparable](d Domain[T]) ([]T, error) {
	return d.Concretize()
}

// ToSingle returns the only value denoted by d.
func ToSingle[T comparable](d Domain[T]) (T, error) {
	v, ok := d.single()
	if !ok {
		return v, errors.Wrapf(ErrNotSingleton, "%s %s", d.Kind(), d)
	}
	return v, nil
}

func CanJoin[T comparable](a, b Domain[T]) bool {
	return a.CanJoin(b)
}

func Join[T comparable](a, b Domain[T]) Domain[T] {
	return a.Join(b)
}

func Contains[T comparable](d Domain[T], v T) bool {
	return d.Contains(v)
}

// Equal compares a and b symbolically; see Domain.EqualTo.
func Equal[T comparable](a, b Domain[T]) Domain[bool] {
	return a.EqualTo(b)
}

// Apply maps f over every value d denotes. A Concrete domain maps to a
// Concrete domain. The other variants map to the images of all their
// values: an Interval is enumerated first, and panics with ErrUnbounded if
// it is not integral or wider than MaxPoints. Images of a widening domain
// are wrapped as an Interval when U is registered for intervals in the
// Default registry, and as a widening Disjunctive otherwise.
func Apply[T, U comparable](d Domain[T], f func(T) U) Domain[U] {
	switch d.Kind() {
	case KindConcrete:
		return NewConcrete(f(d.points()[0]))
	case KindDisjunctive, KindInterval:
		return mapPoints(d.points(), f, d.widening())
	default:
		panic(errors.Errorf("unknown domain kind %s", d.Kind()))
	}
}

// Apply2 maps f over every pair of points of a and b.
func Apply2[T, U, R comparable](a Domain[T], b Domain[U], f func(T, U) R) Domain[R] {
	if a.Kind() == KindConcrete && b.Kind() == KindConcrete {
		return NewConcrete(f(a.points()[0], b.points()[0]))
	}
	var out []R
	for _, x := range a.points() {
		for _, y := range b.points() {
			out = append(out, f(x, y))
		}
	}
	return images(out, a.widening() || b.widening())
}

func mapPoints[T, U comparable](pts []T, f func(T) U, widen bool) Domain[U] {
	out := make([]U, len(pts))
	for i, p := range pts {
		out[i] = f(p)
	}
	return images(out, widen)
}

func images[U comparable](out []U, widen bool) Domain[U] {
	if !widen {
		return NewDisjunctive(out...)
	}
	if Default.Abstraction(typeOf[U]()) == AbstractionInterval {
		return FromSetIn(Default, out...)
	}
	return NewDisjunctive(out...).Widening()
}

// MaxValue returns the largest value denoted by d.
func MaxValue[T Number](d Domain[T]) T {
	switch x := d.(type) {
	case Concrete[T]:
		return x.value
	case Interval[T]:
		return x.high
	case Disjunctive[T]:
		m := x.elems[0]
		for _, v := range x.elems[1:] {
			m = max(m, v)
		}
		return m
	default:
		panic(errors.Wrapf(ErrNotNumeric, "%T", d))
	}
}
