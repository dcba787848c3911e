// Package guard implements the Boolean path-condition algebra that every
// value summary is built on.
//
// Guards are immutable formulas over decision variables. Variables are drawn
// from process-wide state: every call to NewVar returns a variable that has
// never been handed out before within the current generation. A generation
// starts with Reset (or UseBackend) and is expected to span a whole
// verification run; guards created in an earlier generation must not be
// combined with guards from a later one.
package guard

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/p-org/psym/pkg/metrics"
)

// ErrStaleGuard is raised when a guard from a previous generation of the
// algebra is used after Reset.
var ErrStaleGuard = errors.New("guard belongs to a previous generation")

// ErrVariablesExhausted is raised by NewVar when the backend's variable table
// is full. Select a larger table with WithVariables.
var ErrVariablesExhausted = errors.New("guard variable table exhausted")

type algebra struct {
	mu         sync.Mutex
	b          backend
	config     *backendConfig
	generation uint64
}

var global = mustAlgebra(BackendBDD)

func mustAlgebra(kind BackendKind) *algebra {
	config := defaultBackendConfig()
	b, err := newBackend(kind, config)
	if err != nil {
		panic(err)
	}
	return &algebra{b: b, config: config, generation: 1}
}

// Guard is a Boolean formula. The zero Guard is equivalent to False().
type Guard struct {
	r   ref
	gen uint64
}

// UseBackend replaces the process-wide algebra with a fresh instance of the
// given backend. It starts a new generation. Options not given take their
// defaults.
func UseBackend(kind BackendKind, options ...Option) error {
	config := defaultBackendConfig()
	config.apply(options)
	return use(kind, config)
}

func use(kind BackendKind, config *backendConfig) error {
	b, err := newBackend(kind, config)
	if err != nil {
		return err
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	global.b = b
	global.config = config
	global.generation++
	return nil
}

// Reset discards all variables and starts a new generation with the current
// backend kind and options. Call it only between verification runs.
func Reset() {
	global.mu.Lock()
	kind, config := global.b.kind(), global.config
	global.mu.Unlock()
	if err := use(kind, config); err != nil {
		panic(err)
	}
}

// Backend returns the kind of the active backend.
func Backend() BackendKind {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.b.kind()
}

// NumVars returns the number of variables allocated in the current
// generation.
func NumVars() int {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.b.numVars()
}

// resolve returns the backend handle of g, checking that g belongs to the
// current generation. Callers must hold global.mu.
func (g Guard) resolve() ref {
	if g.gen == 0 {
		return global.b.constFalse()
	}
	if g.gen != global.generation {
		panic(errors.Wrapf(ErrStaleGuard, "generation %d, current %d", g.gen, global.generation))
	}
	return g.r
}

func wrap(r ref) Guard {
	return Guard{r: r, gen: global.generation}
}

// True returns the guard that holds under every execution.
func True() Guard {
	global.mu.Lock()
	defer global.mu.Unlock()
	return wrap(global.b.constTrue())
}

// False returns the unsatisfiable guard.
func False() Guard {
	global.mu.Lock()
	defer global.mu.Unlock()
	return wrap(global.b.constFalse())
}

// NewVar allocates a fresh decision variable.
func NewVar() Guard {
	global.mu.Lock()
	defer global.mu.Unlock()
	g := wrap(global.b.newVar())
	metrics.GuardVariablesAllocated.WithLabelValues(global.b.kind().String()).Inc()
	return g
}

func (g Guard) And(o Guard) Guard {
	global.mu.Lock()
	defer global.mu.Unlock()
	return wrap(global.b.and(g.resolve(), o.resolve()))
}

func (g Guard) Or(o Guard) Guard {
	global.mu.Lock()
	defer global.mu.Unlock()
	return wrap(global.b.or(g.resolve(), o.resolve()))
}

func (g Guard) Not() Guard {
	global.mu.Lock()
	defer global.mu.Unlock()
	return wrap(global.b.not(g.resolve()))
}

// IsFalse reports whether g is unsatisfiable. The answer is exact for both
// backends.
func (g Guard) IsFalse() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.b.isFalse(g.resolve())
}

// IsTrue reports whether g is valid.
func (g Guard) IsTrue() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.b.isTrue(g.resolve())
}

// Equal reports whether g and o denote the same Boolean function.
func (g Guard) Equal(o Guard) bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.b.equal(g.resolve(), o.resolve())
}

// Implies reports whether every execution satisfying g also satisfies o.
func (g Guard) Implies(o Guard) bool {
	return g.And(o.Not()).IsFalse()
}

func (g Guard) String() string {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.b.format(g.resolve())
}

// OrMany returns the disjunction of gs, or False() if gs is empty.
func OrMany(gs ...Guard) Guard {
	res := False()
	for _, g := range gs {
		res = res.Or(g)
	}
	return res
}

// AndMany returns the conjunction of gs, or True() if gs is empty.
func AndMany(gs ...Guard) Guard {
	res := True()
	for _, g := range gs {
		res = res.And(g)
	}
	return res
}
