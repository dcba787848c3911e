// Package unionfind partitions the indices 0..n-1 into disjoint classes.
package unionfind

// UnionFind is a disjoint-set forest with path compression and union by
// size.
type UnionFind struct {
	parent []int
	size   []int
}

func New(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

// Find returns the representative of the class containing i.
func (uf *UnionFind) Find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		uf.parent[i], i = root, uf.parent[i]
	}
	return root
}

// Union merges the classes of i and j and reports whether they were
// distinct.
func (uf *UnionFind) Union(i, j int) bool {
	ri, rj := uf.Find(i), uf.Find(j)
	if ri == rj {
		return false
	}
	if uf.size[ri] < uf.size[rj] {
		ri, rj = rj, ri
	}
	uf.parent[rj] = ri
	uf.size[ri] += uf.size[rj]
	return true
}

func (uf *UnionFind) Connected(i, j int) bool {
	return uf.Find(i) == uf.Find(j)
}

// Sets returns the classes. Classes are ordered by their smallest member
// and members are listed in increasing order.
func (uf *UnionFind) Sets() [][]int {
	index := make(map[int]int)
	var sets [][]int
	for i := range uf.parent {
		r := uf.Find(i)
		k, ok := index[r]
		if !ok {
			k = len(sets)
			index[r] = k
			sets = append(sets, nil)
		}
		sets[k] = append(sets[k], i)
	}
	return sets
}

// Group partitions n items under the relation related, which is treated as
// symmetric; its transitive closure defines the classes.
func Group(n int, related func(i, j int) bool) [][]int {
	uf := New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if uf.Connected(i, j) {
				continue
			}
			if related(i, j) {
				uf.Union(i, j)
			}
		}
	}
	return uf.Sets()
}
