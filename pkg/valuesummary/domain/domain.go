// Package domain provides the abstract domains that key value summaries.
//
// A Domain[T] denotes a set of concrete values of T. There are exactly three
// variants: Concrete (one value, never joined), Disjunctive (an explicit
// finite set) and Interval (a closed numeric range). The set of variants is
// closed; code that needs to distinguish them switches on Kind.
package domain

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
)

var (
	// ErrIllegalJoin is raised when Join is called on domains for which
	// CanJoin is false.
	ErrIllegalJoin = errors.New("illegal join of abstract domains")
	// ErrUnbounded is returned when an abstraction cannot be expanded into a
	// finite set of concrete values.
	ErrUnbounded = errors.New("cannot concretize unbounded domain")
	// ErrNotSingleton is returned when a domain that denotes several values
	// is converted to a single concrete value.
	ErrNotSingleton = errors.New("domain does not denote a single value")
	// ErrNotNumeric is raised when a numeric operation reaches a domain it
	// cannot order.
	ErrNotNumeric = errors.New("domain is not numeric")
	// ErrEmptyDomain is raised when a domain would denote no value at all.
	ErrEmptyDomain = errors.New("domain must denote at least one value")
)

// Kind identifies the variant of a Domain.
type Kind int

const (
	KindConcrete Kind = iota
	KindDisjunctive
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindDisjunctive:
		return "disjunctive"
	case KindInterval:
		return "interval"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Number is the set of element types an Interval can range over.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Domain is an abstraction of a non-empty set of values of T.
//
// CanJoin is symmetric, and whenever it holds Join returns a domain whose
// concretization includes both operands' concretizations.
type Domain[T comparable] interface {
	Kind() Kind
	// Contains reports whether v is one of the denoted values.
	Contains(v T) bool
	CanJoin(o Domain[T]) bool
	// Join panics with ErrIllegalJoin if CanJoin(o) is false.
	Join(o Domain[T]) Domain[T]
	// EqualTo compares the denoted values symbolically: the result holds
	// true if some pair of values may be equal and false if some pair may
	// differ.
	EqualTo(o Domain[T]) Domain[bool]
	// Concretize lists the denoted values, or fails with ErrUnbounded.
	Concretize() ([]T, error)
	// Identical reports whether o is the same key: same variant, same
	// denoted values.
	Identical(o Domain[T]) bool
	// Fingerprint is a hash consistent with Identical.
	Fingerprint() uint64
	String() string

	// points are every value denoted, which function application is
	// evaluated on. It panics with ErrUnbounded when they cannot be listed.
	points() []T
	single() (T, bool)
	widening() bool
}

type fingerprint[T any] struct {
	Kind   Kind
	Values []T `hash:"set"`
}

// hashOf falls back to a shared bucket for values hashstructure cannot
// handle (funcs, channels); Identical still separates them.
func hashOf[T any](k Kind, values []T) uint64 {
	h, err := hashstructure.Hash(fingerprint[T]{Kind: k, Values: values}, nil)
	if err != nil {
		return uint64(k)
	}
	return h
}

func sameRuntimeKind[T any](a, b T) bool {
	return reflect.TypeOf(any(a)) == reflect.TypeOf(any(b))
}

func illegalJoin[T comparable](a, b Domain[T]) error {
	return errors.Wrapf(ErrIllegalJoin, "%s %s with %s %s", a.Kind(), a, b.Kind(), b)
}

// compare implements EqualTo for any pair of domains of which at least one
// can be concretized.
func compare[T comparable](a, b Domain[T]) Domain[bool] {
	mayDiffer := true
	if x, ok := a.single(); ok {
		if y, ok := b.single(); ok && x == y {
			mayDiffer = false
		}
	}
	return boolDomain(overlaps(a, b), mayDiffer)
}

func overlaps[T comparable](a, b Domain[T]) bool {
	if pts, err := a.Concretize(); err == nil {
		for _, p := range pts {
			if b.Contains(p) {
				return true
			}
		}
		return false
	}
	if pts, err := b.Concretize(); err == nil {
		for _, p := range pts {
			if a.Contains(p) {
				return true
			}
		}
		return false
	}
	return true
}

func boolDomain(mayBeTrue, mayBeFalse bool) Domain[bool] {
	var vs []bool
	if mayBeTrue {
		vs = append(vs, true)
	}
	if mayBeFalse || !mayBeTrue {
		vs = append(vs, false)
	}
	return NewDisjunctive(vs...)
}
