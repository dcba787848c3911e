// Package nondet turns an N-way nondeterministic pick among value summaries
// into a single summary whose branches are told apart by fresh guard
// variables.
package nondet

import (
	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/metrics"
	vs "github.com/p-org/psym/pkg/valuesummary"
)

const (
	modeClustered = "clustered"
	modeFlat      = "flat"
)

// Related is the relation Choice clusters candidates by: two candidates must
// be told apart by fresh variables when they can hold a value in the same
// execution or when their keys would be joined on merge.
func Related[T comparable](a, b *vs.PrimitiveVS[T]) bool {
	return vs.Overlapping(a, b) || vs.Joinable(a, b)
}

// Choice merges the candidates of one nondeterministic pick. Candidates are
// first clustered with Related; only members of the same cluster need to be
// distinguished, so ceil(log2(n)) fresh variables are allocated for the
// largest cluster size n and shared by all clusters.
//
// No choices yield an empty summary and a single choice is returned as is.
func Choice[T comparable](choices []*vs.PrimitiveVS[T]) *vs.PrimitiveVS[T] {
	switch len(choices) {
	case 0:
		return vs.Empty[T]()
	case 1:
		return choices[0]
	}

	clusters := vs.Partition(choices, Related[T])
	largest := 0
	for _, c := range clusters {
		largest = max(largest, len(c.Members))
	}
	conds := combinations(newVars(bitsFor(largest)))

	var results []*vs.PrimitiveVS[T]
	for _, c := range clusters {
		members := make([]*vs.PrimitiveVS[T], len(c.Members))
		for i, m := range c.Members {
			members[i] = choices[m]
		}
		results = append(results, distinguish(members, conds, c.Universe)...)
	}

	metrics.NondetChoices.WithLabelValues(modeClustered).Inc()
	return choices[0].Restrict(guard.False()).Merge(results...)
}

// ChoiceFlat is Choice without clustering: every candidate gets its own
// combination of ceil(log2(len(choices))) fresh variables.
func ChoiceFlat[T comparable](choices []*vs.PrimitiveVS[T]) *vs.PrimitiveVS[T] {
	switch len(choices) {
	case 0:
		return vs.Empty[T]()
	case 1:
		return choices[0]
	}

	conds := combinations(newVars(bitsFor(len(choices))))
	results := distinguish(choices, conds, guard.True())

	metrics.NondetChoices.WithLabelValues(modeFlat).Inc()
	return choices[0].Restrict(guard.False()).Merge(results...)
}

// distinguish restricts the i-th choice to the i-th condition. Whatever part
// of universe is then left uncovered is handed to the choices in order, each
// taking the residual it is enabled under.
func distinguish[T comparable](choices []*vs.PrimitiveVS[T], conds []guard.Guard, universe guard.Guard) []*vs.PrimitiveVS[T] {
	results := make([]*vs.PrimitiveVS[T], 0, len(choices))
	accounted := guard.False()
	for i, c := range choices {
		r := c.Restrict(conds[i])
		results = append(results, r)
		accounted = accounted.Or(r.Universe())
	}

	residual := accounted.Not().And(universe)
	for _, c := range choices {
		if residual.IsFalse() {
			break
		}
		results = append(results, c.Restrict(residual))
		residual = residual.And(c.Universe().Not())
	}
	return results
}

// bitsFor returns ceil(log2(n)), and 0 for n <= 1.
func bitsFor(n int) int {
	k := 0
	for 1<<k < n {
		k++
	}
	return k
}

func newVars(k int) []guard.Guard {
	vars := make([]guard.Guard, k)
	for i := range vars {
		vars[i] = guard.NewVar()
	}
	metrics.NondetVariables.Observe(float64(k))
	return vars
}

// combinations returns the 2^len(vars) sign assignments of vars. The first
// variable varies slowest: for [a, b] the result is [b∧a, ¬b∧a, b∧¬a, ¬b∧¬a].
func combinations(vars []guard.Guard) []guard.Guard {
	if len(vars) == 0 {
		return []guard.Guard{guard.True()}
	}
	head := vars[0]
	if len(vars) == 1 {
		return []guard.Guard{head, head.Not()}
	}
	rest := combinations(vars[1:])
	res := make([]guard.Guard, 0, 2*len(rest))
	for _, g := range rest {
		res = append(res, g.And(head))
	}
	for _, g := range rest {
		res = append(res, g.And(head.Not()))
	}
	return res
}

// ChooseGuard returns the disjunction of the guards of the first n values of
// choice, or true if choice holds at most n values. A negative n chooses
// nothing.
func ChooseGuard[T comparable](n int, choice *vs.PrimitiveVS[T]) guard.Guard {
	if choice.Len() <= n {
		return guard.True()
	}
	g := guard.False()
	for i, e := range choice.GuardedValues() {
		if i >= n {
			break
		}
		g = g.Or(e.Guard)
	}
	return g
}

// ExcludeChoice removes from choice the executions under g. If some value
// survives, the first surviving value is held under g instead, so the result
// still covers g.
func ExcludeChoice[T comparable](g guard.Guard, choice *vs.PrimitiveVS[T]) *vs.PrimitiveVS[T] {
	rest := choice.Restrict(g.Not())
	if rest.IsEmpty() {
		return rest
	}
	first := rest.Values()[0]
	return rest.Merge(vs.FromDomain(first).Restrict(g))
}
