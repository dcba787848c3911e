package guard

import (
	"fmt"

	"github.com/dalzilio/rudd"
	"github.com/pkg/errors"
)

// bddKernel is the subset of the rudd API used by the BDD backend.
type bddKernel interface {
	Varnum() int
	True() rudd.Node
	False() rudd.Node
	Ithvar(i int) rudd.Node
	Not(n rudd.Node) rudd.Node
	And(n ...rudd.Node) rudd.Node
	Or(n ...rudd.Node) rudd.Node
	Equal(n1, n2 rudd.Node) bool
	Error() string
}

type bddBackend struct {
	b    bddKernel
	next int
}

var _ bddKernel = &rudd.BDD{}

// newBDDBackend sizes the variable table once; rudd cannot add variables to
// an existing BDD.
func newBDDBackend(varnum int) (*bddBackend, error) {
	if varnum < 1 || varnum > MaxVariables {
		return nil, errors.Errorf("bdd variable table size must be in [1, %d], got %d", MaxVariables, varnum)
	}
	b, err := rudd.New(varnum)
	if err != nil {
		return nil, errors.Wrap(err, "initializing bdd backend")
	}
	return &bddBackend{b: b}, nil
}

func (d *bddBackend) kind() BackendKind {
	return BackendBDD
}

func (d *bddBackend) node(r ref) rudd.Node {
	if r == nil {
		return d.b.False()
	}
	return r.(rudd.Node)
}

// check turns a failed rudd operation into a panic; a nil node means the
// kernel ran out of resources and there is no sensible guard to return.
func (d *bddBackend) check(n rudd.Node) rudd.Node {
	if n == nil {
		panic(errors.Errorf("bdd operation failed: %s", d.b.Error()))
	}
	return n
}

func (d *bddBackend) constTrue() ref {
	return d.b.True()
}

func (d *bddBackend) constFalse() ref {
	return d.b.False()
}

func (d *bddBackend) newVar() ref {
	if d.next >= d.b.Varnum() {
		panic(errors.Wrapf(ErrVariablesExhausted, "all %d bdd variables in use", d.b.Varnum()))
	}
	n := d.check(d.b.Ithvar(d.next))
	d.next++
	return n
}

func (d *bddBackend) and(a, b ref) ref {
	return d.check(d.b.And(d.node(a), d.node(b)))
}

func (d *bddBackend) or(a, b ref) ref {
	return d.check(d.b.Or(d.node(a), d.node(b)))
}

func (d *bddBackend) not(a ref) ref {
	return d.check(d.b.Not(d.node(a)))
}

func (d *bddBackend) isFalse(a ref) bool {
	return d.b.Equal(d.node(a), d.b.False())
}

func (d *bddBackend) isTrue(a ref) bool {
	return d.b.Equal(d.node(a), d.b.True())
}

func (d *bddBackend) equal(a, b ref) bool {
	return d.b.Equal(d.node(a), d.node(b))
}

func (d *bddBackend) numVars() int {
	return d.next
}

func (d *bddBackend) format(a ref) string {
	switch {
	case d.isFalse(a):
		return "false"
	case d.isTrue(a):
		return "true"
	}
	return fmt.Sprintf("bdd#%d", *d.node(a))
}
