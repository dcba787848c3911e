package guard

import (
	"fmt"
	"strings"
)

// BackendKind selects the decision-diagram or solver representation used by
// the process-wide guard algebra.
type BackendKind string

const (
	// BackendBDD represents guards as reduced ordered binary decision
	// diagrams. Equality and falsity are node comparisons.
	BackendBDD BackendKind = "bdd"
	// BackendSAT represents guards as nodes of a hash-consed and-inverter
	// circuit and decides falsity with a SAT solver.
	BackendSAT BackendKind = "sat"
)

func (k BackendKind) String() string {
	return string(k)
}

// ParseBackendKind converts a configuration string into a BackendKind.
func ParseBackendKind(s string) (BackendKind, error) {
	switch k := BackendKind(strings.ToLower(strings.TrimSpace(s))); k {
	case BackendBDD, BackendSAT:
		return k, nil
	case "":
		return BackendBDD, nil
	default:
		return "", fmt.Errorf("unknown guard backend %q", s)
	}
}

// ref is a backend specific handle to a formula.
type ref interface{}

// backend implementations are not safe for concurrent use; the algebra
// serialises every call.
type backend interface {
	kind() BackendKind
	constTrue() ref
	constFalse() ref
	newVar() ref
	and(a, b ref) ref
	or(a, b ref) ref
	not(a ref) ref
	isFalse(a ref) bool
	isTrue(a ref) bool
	equal(a, b ref) bool
	numVars() int
	format(a ref) string
}

const (
	// DefaultVariables is the size of the BDD variable table unless
	// WithVariables says otherwise.
	DefaultVariables = 1 << 16
	// MaxVariables is the largest variable table the BDD backend supports.
	MaxVariables = 0x1FFFFF
)

// Option configures a backend created by UseBackend.
type Option func(c *backendConfig)

// WithVariables sets how many variables one generation of the BDD backend
// can allocate. The table is sized up front and never grows; NewVar panics
// with ErrVariablesExhausted past it. The SAT backend has no such limit.
func WithVariables(n int) Option {
	return func(c *backendConfig) {
		c.variables = n
	}
}

type backendConfig struct {
	variables int
}

func (c *backendConfig) apply(options []Option) {
	for _, o := range options {
		o(c)
	}
}

func defaultBackendConfig() *backendConfig {
	return &backendConfig{variables: DefaultVariables}
}

func newBackend(kind BackendKind, config *backendConfig) (backend, error) {
	switch kind {
	case BackendBDD:
		return newBDDBackend(config.variables)
	case BackendSAT:
		return newSATBackend(), nil
	default:
		return nil, fmt.Errorf("unknown guard backend %q", kind)
	}
}
