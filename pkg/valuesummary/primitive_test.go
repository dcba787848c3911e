package valuesummary

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

func keys[T comparable](vs *PrimitiveVS[T]) []string {
	var res []string
	for _, d := range vs.Values() {
		res = append(res, d.String())
	}
	return res
}

func requireExclusive[T comparable](t *testing.T, vs *PrimitiveVS[T]) {
	t.Helper()
	gvs := vs.GuardedValues()
	for i := range gvs {
		require.False(t, gvs[i].Guard.IsFalse(), "false guard stored for %s", gvs[i].Value)
		for j := i + 1; j < len(gvs); j++ {
			require.True(t, gvs[i].Guard.And(gvs[j].Guard).IsFalse(), "%s and %s overlap", gvs[i].Value, gvs[j].Value)
		}
	}
}

func gv[T comparable](v T, g guard.Guard) GuardedValue[T] {
	return GuardedValue[T]{Value: domain.FromConcrete(v), Guard: g}
}

func TestNew(t *testing.T) {
	vs := New(3)
	assert.Equal(t, 1, vs.Len())
	assert.True(t, vs.Universe().IsTrue())
	assert.True(t, vs.HasValue(3))
	assert.False(t, vs.HasValue(4))

	e := Empty[int]()
	assert.True(t, e.IsEmpty())
	assert.True(t, e.Universe().IsFalse())
	assert.True(t, e.Restrict(guard.True()).IsEmpty())
	assert.True(t, e.GuardFor(1).IsFalse())
}

func TestFromGuardedValues(t *testing.T) {
	x := guard.NewVar()
	vs := FromGuardedValues(
		gv("a", x),
		gv("b", guard.False()),
		gv("a", x.Not()),
	)
	if diff := cmp.Diff([]string{"{a}"}, keys(vs)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.True(t, vs.GuardFor("a").IsTrue())
	assert.False(t, vs.HasValue("b"))
}

func TestInvariantChecks(t *testing.T) {
	SetInvariantChecks(true)
	defer SetInvariantChecks(false)

	x := guard.NewVar()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, errors.Is(r.(error), ErrNonExclusiveGuards))
	}()
	FromGuardedValues(gv(1, x), gv(2, guard.True()))
}

func TestRestrict(t *testing.T) {
	a, b := guard.NewVar(), guard.NewVar()
	g1, g2 := a, a.Not().And(b)
	vs := FromGuardedValues(gv("A", g1), gv("B", g2))
	requireExclusive(t, vs)

	r := vs.Restrict(g1)
	if diff := cmp.Diff([]string{"{A}"}, keys(r)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.True(t, r.GuardFor("A").Equal(g1))
	assert.True(t, r.Universe().Equal(vs.Universe().And(g1)))

	assert.Same(t, vs, vs.Restrict(vs.Universe()))
	assert.True(t, vs.Restrict(a.Not().And(b.Not())).IsEmpty())
}

func TestRestrictRoundTrip(t *testing.T) {
	x, y := guard.NewVar(), guard.NewVar()
	vs := FromGuardedValues(gv(1, x.And(y)), gv(2, x.Not()), gv(3, x.And(y.Not())))

	for _, g := range []guard.Guard{x, y, x.Or(y), guard.True(), guard.False()} {
		back := vs.Restrict(g).Merge(vs.Restrict(g.Not()))
		requireExclusive(t, back)
		require.Equal(t, vs.Len(), back.Len())
		for _, e := range vs.GuardedValues() {
			assert.True(t, back.GuardForDomain(e.Value).Equal(e.Guard), "guard of %s under %s", e.Value, g)
		}
	}
}

func TestMerge(t *testing.T) {
	x, y := guard.NewVar(), guard.NewVar()
	a := FromGuardedValues(gv(1, x.And(y)), gv(2, x.And(y.Not())))
	b := FromGuardedValues(gv(2, x.Not().And(y)), gv(3, x.Not().And(y.Not())))

	m := a.Merge(b)
	requireExclusive(t, m)
	if diff := cmp.Diff([]string{"{1}", "{2}", "{3}"}, keys(m)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.True(t, m.Universe().Equal(a.Universe().Or(b.Universe())))
	assert.True(t, m.GuardFor(2).Equal(x.And(y.Not()).Or(x.Not().And(y))))
	assert.Equal(t, 2, a.Len(), "merge leaves its receiver unchanged")
}

func TestMergeJoinsWideningKeys(t *testing.T) {
	x := guard.NewVar()
	a := FromDomain[int](domain.NewDisjunctive(1).Widening()).Restrict(x)
	b := FromDomain[int](domain.NewDisjunctive(2).Widening()).Restrict(x.Not())

	m := a.Merge(b)
	require.Equal(t, 1, m.Len())
	assert.True(t, m.Values()[0].Identical(domain.NewDisjunctive(1, 2)))
	assert.True(t, m.Universe().IsTrue())
	assert.True(t, m.GuardFor(1).IsTrue(), "joined keys over-approximate both values")
}

func TestUpdateUnderGuard(t *testing.T) {
	x := guard.NewVar()
	vs := New("old")
	u := vs.UpdateUnderGuard(x, New("new"))
	requireExclusive(t, u)
	assert.True(t, u.GuardFor("new").Equal(x))
	assert.True(t, u.GuardFor("old").Equal(x.Not()))
	assert.True(t, u.Universe().IsTrue())
}

func TestGuardForUnionsKeys(t *testing.T) {
	x := guard.NewVar()
	vs := FromGuardedValues(
		GuardedValue[int]{Value: domain.NewDisjunctive(1, 2), Guard: x},
		GuardedValue[int]{Value: domain.NewDisjunctive(2, 3), Guard: x.Not()},
	)
	assert.True(t, vs.GuardFor(2).IsTrue())
	assert.True(t, vs.GuardFor(1).Equal(x))
	assert.True(t, vs.GuardFor(3).Equal(x.Not()))
	assert.False(t, vs.HasValue(4))

	assert.True(t, vs.HasDomain(domain.NewDisjunctive(2, 1)))
	assert.True(t, vs.GuardForDomain(domain.NewDisjunctive(2)).IsFalse())
}

func TestApply(t *testing.T) {
	x := guard.NewVar()
	vs := FromGuardedValues(gv(1, x), gv(3, x.Not()))

	odd := Apply(vs, func(v int) bool { return v%2 == 1 })
	require.Equal(t, 1, odd.Len(), "keys with the same image share one entry")
	assert.True(t, odd.GuardFor(true).IsTrue())

	str := Apply(vs, strconv.Itoa)
	if diff := cmp.Diff([]string{"{1}", "{3}"}, keys(str)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.True(t, str.GuardFor("3").Equal(x.Not()))
}

func TestApply2(t *testing.T) {
	x, y := guard.NewVar(), guard.NewVar()
	a := FromGuardedValues(gv(1, x), gv(2, x.Not()))
	b := FromGuardedValues(gv(10, y), gv(20, y.Not()))

	sum := Apply2(a, b, func(p, q int) int { return p + q })
	requireExclusive(t, sum)
	assert.Equal(t, 4, sum.Len())
	assert.True(t, sum.GuardFor(22).Equal(x.Not().And(y.Not())))

	none := Apply2(a.Restrict(x), b.Restrict(x.Not()), func(p, q int) int { return p + q })
	assert.True(t, none.IsEmpty())
}

func TestApplyInto(t *testing.T) {
	x := guard.NewVar()
	base := FromDomain[int](domain.NewDisjunctive(0).Widening()).Restrict(x.Not())
	vs := FromGuardedValues(GuardedValue[int]{Value: domain.NewDisjunctive(5).Widening(), Guard: x})

	res := ApplyInto(vs, base, func(v int) int { return v * 2 })
	require.Equal(t, 1, res.Len())
	assert.True(t, res.Values()[0].Identical(domain.NewDisjunctive(0, 10)))
	assert.True(t, res.Universe().IsTrue())
}

func TestSymbolicEquals(t *testing.T) {
	x, y := guard.NewVar(), guard.NewVar()

	t.Run("disjoint universes are vacuously equal", func(t *testing.T) {
		a := New(1).Restrict(x)
		b := New(2).Restrict(x.Not())
		for _, pc := range []guard.Guard{guard.True(), y, x.And(y.Not())} {
			eq := a.SymbolicEquals(b, pc)
			assert.True(t, BoolGuard(eq).Equal(pc))
			assert.True(t, eq.GuardFor(false).IsFalse())
		}
	})

	t.Run("equal where values match", func(t *testing.T) {
		a := FromGuardedValues(gv(1, x), gv(2, x.Not()))
		eq := a.SymbolicEquals(New(1), guard.True())
		requireExclusive(t, eq)
		assert.True(t, eq.GuardFor(true).Equal(x))
		assert.True(t, eq.GuardFor(false).Equal(x.Not()))
	})

	t.Run("sets are never equal", func(t *testing.T) {
		a := FromDomain[int](domain.NewDisjunctive(1, 2))
		eq := a.SymbolicEquals(a, y)
		assert.True(t, eq.GuardFor(true).IsFalse())
		assert.True(t, eq.GuardFor(false).Equal(y))
	})
}

func TestDomainSymbolicEquals(t *testing.T) {
	x := guard.NewVar()
	a := FromDomain[int](domain.NewDisjunctive(1, 2))
	b := FromDomain[int](domain.NewDisjunctive(2, 3))

	eq := a.DomainSymbolicEquals(b, guard.True())
	require.Equal(t, 1, eq.Len())
	assert.True(t, eq.GuardForDomain(domain.NewDisjunctive(true, false)).IsTrue())

	disjoint := New(1).Restrict(x).DomainSymbolicEquals(New(1).Restrict(x.Not()), guard.True())
	if diff := cmp.Diff([]string{"{true}"}, keys(disjoint)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.True(t, disjoint.Universe().IsTrue())
}

func TestTrueUnderGuard(t *testing.T) {
	x := guard.NewVar()
	b := TrueUnderGuard(x)
	assert.True(t, BoolGuard(b).Equal(x))
	assert.True(t, b.GuardFor(false).Equal(x.Not()))
	assert.Equal(t, 1, TrueUnderGuard(guard.True()).Len())
}

func TestConcreteConversions(t *testing.T) {
	x := guard.NewVar()
	vs := FromConcrete(
		ConcreteValue[string]{Value: "a", Guard: x},
		ConcreteValue[string]{Value: "b", Guard: x.Not()},
	)
	cvs, err := vs.ToConcrete()
	require.NoError(t, err)
	require.Len(t, cvs, 2)
	assert.Equal(t, "a", cvs[0].Value)
	assert.True(t, cvs[0].Guard.Equal(x))
	assert.Equal(t, "b", cvs[1].Value)

	_, err = FromDomain[int](domain.NewInterval(1, 3)).ToConcrete()
	assert.True(t, errors.Is(err, domain.ErrNotSingleton))
	_, err = FromDomain[int](domain.NewDisjunctive(1, 3)).ToConcrete()
	assert.True(t, errors.Is(err, domain.ErrNotSingleton))
}

func TestRemove(t *testing.T) {
	x, y := guard.NewVar(), guard.NewVar()
	vs := FromGuardedValues(gv(1, x), gv(2, x.Not()))
	rm := FromGuardedValues(gv(1, y))

	res := vs.Remove(rm)
	assert.True(t, res.GuardFor(1).Equal(x.And(y.Not())))
	assert.True(t, res.GuardFor(2).Equal(x.Not()))
}

func TestPartition(t *testing.T) {
	x := guard.NewVar()
	vss := []*PrimitiveVS[int]{
		New(1).Restrict(x),
		New(2).Restrict(x),
		New(3).Restrict(x.Not()),
	}

	clusters := Partition(vss, Overlapping[int])
	require.Len(t, clusters, 2)
	assert.Equal(t, []int{0, 1}, clusters[0].Members)
	assert.True(t, clusters[0].Universe.Equal(x))
	assert.Equal(t, []int{2}, clusters[1].Members)
	assert.True(t, clusters[1].Universe.Equal(x.Not()))

	assert.Len(t, Partition(vss, Joinable[int]), 3)
	assert.Empty(t, Partition[int](nil, Overlapping[int]))
}
