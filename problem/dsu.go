// Package problem - disjoint-set union for clique merging.
//
// Overlapping MustStayTogether constraints must collapse into one clique;
// union-find is the canonical tool. Constraint member counts are tiny, so
// path halving alone suffices (no union-by-rank), and find is written
// iteratively so no input can grow the call stack.
package problem

// dsu is a parent-array disjoint-set union with iterative path halving.
type dsu struct {
	parent []int
}

func newDSU(n int) *dsu {
	d := &dsu{parent: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}

	return d
}

// find returns the representative of i's set, halving the path as it walks.
func (d *dsu) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}

	return i
}

// union merges the sets containing i and j. The smaller representative wins
// so that merge results do not depend on argument order.
func (d *dsu) union(i, j int) {
	ri, rj := d.find(i), d.find(j)
	if ri == rj {
		return
	}
	if rj < ri {
		ri, rj = rj, ri
	}
	d.parent[rj] = ri
}
