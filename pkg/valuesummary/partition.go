package valuesummary

import (
	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/valuesummary/unionfind"
)

// Cluster is a class of summaries produced by Partition.
type Cluster struct {
	// Members are indices into the partitioned slice, in increasing order.
	Members []int
	// Universe is the disjunction of the members' universes.
	Universe guard.Guard
}

// Partition groups summaries into the classes of the transitive closure of
// related. Clusters are ordered by their first member.
func Partition[T comparable](vss []*PrimitiveVS[T], related func(a, b *PrimitiveVS[T]) bool) []Cluster {
	sets := unionfind.Group(len(vss), func(i, j int) bool {
		return related(vss[i], vss[j])
	})
	clusters := make([]Cluster, len(sets))
	for i, members := range sets {
		u := guard.False()
		for _, m := range members {
			u = u.Or(vss[m].Universe())
		}
		clusters[i] = Cluster{Members: members, Universe: u}
	}
	return clusters
}

// Overlapping reports whether a and b may both hold a value in the same
// execution.
func Overlapping[T comparable](a, b *PrimitiveVS[T]) bool {
	return !a.Universe().And(b.Universe()).IsFalse()
}

// Joinable reports whether some key of a can join some key of b.
func Joinable[T comparable](a, b *PrimitiveVS[T]) bool {
	for _, x := range a.entries {
		for _, y := range b.entries {
			if x.Value.CanJoin(y.Value) {
				return true
			}
		}
	}
	return false
}
