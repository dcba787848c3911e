package guard

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

const unsatisfiable = -1

// satBackend keeps every guard as a literal of one structurally hashed
// circuit. Identically built guards therefore share a literal, and falsity is
// decided by handing the cone of a literal to a fresh solver.
type satBackend struct {
	c     *logic.C
	vars  int
	unsat map[z.Lit]bool
}

func newSATBackend() *satBackend {
	return &satBackend{
		c:     logic.NewCCap(1024),
		unsat: make(map[z.Lit]bool),
	}
}

func (s *satBackend) kind() BackendKind {
	return BackendSAT
}

func (s *satBackend) lit(r ref) z.Lit {
	if r == nil {
		return s.c.F
	}
	return r.(z.Lit)
}

func (s *satBackend) constTrue() ref {
	return s.c.T
}

func (s *satBackend) constFalse() ref {
	return s.c.F
}

func (s *satBackend) newVar() ref {
	s.vars++
	return s.c.Lit()
}

func (s *satBackend) and(a, b ref) ref {
	return s.c.And(s.lit(a), s.lit(b))
}

func (s *satBackend) or(a, b ref) ref {
	return s.c.Or(s.lit(a), s.lit(b))
}

func (s *satBackend) not(a ref) ref {
	return s.lit(a).Not()
}

// unsatisfiable reports whether m has no model. Answers are memoised per
// literal since the circuit only ever grows.
func (s *satBackend) unsatisfiable(m z.Lit) bool {
	switch m {
	case s.c.F:
		return true
	case s.c.T:
		return false
	}
	if res, ok := s.unsat[m]; ok {
		return res
	}
	g := gini.New()
	s.c.ToCnfFrom(g, m)
	g.Assume(m)
	res := g.Solve() == unsatisfiable
	s.unsat[m] = res
	return res
}

func (s *satBackend) isFalse(a ref) bool {
	return s.unsatisfiable(s.lit(a))
}

func (s *satBackend) isTrue(a ref) bool {
	return s.unsatisfiable(s.lit(a).Not())
}

func (s *satBackend) equal(a, b ref) bool {
	x, y := s.lit(a), s.lit(b)
	if x == y {
		return true
	}
	return s.unsatisfiable(s.c.Xor(x, y))
}

func (s *satBackend) numVars() int {
	return s.vars
}

func (s *satBackend) format(a ref) string {
	switch m := s.lit(a); {
	case s.unsatisfiable(m):
		return "false"
	case s.unsatisfiable(m.Not()):
		return "true"
	default:
		return "sat#" + m.String()
	}
}
