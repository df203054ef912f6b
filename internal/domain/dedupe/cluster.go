package dedupe

import (
	"sort"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/matcher"
)

// connectedComponents partitions pool indices into components of the
// similarity graph using union-find. Transitive: a bridge record chains
// its neighbors into one component even if they are not directly
// similar to each other.
func connectedComponents(pool []matcher.Record, edges map[[2]int]bool) [][]int {
	parent := make([]int, len(pool))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for e := range edges {
		union(e[0], e[1])
	}

	groups := make(map[int][]int)
	for i := range pool {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	comps := make([][]int, 0, len(groups))
	for _, comp := range groups {
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// cliqueClusters builds disjoint clusters whose members are all mutually
// similar. Greedy over the pool's canonical (id-sorted) order: each
// unassigned record seeds a cluster and absorbs every later unassigned
// record similar to all current members. Deterministic, and never merges
// two records through a bridge record alone.
func cliqueClusters(pool []matcher.Record, edges map[[2]int]bool) [][]int {
	assigned := make([]bool, len(pool))
	var comps [][]int

	for i := range pool {
		if assigned[i] {
			continue
		}
		comp := []int{i}
		assigned[i] = true

		for j := i + 1; j < len(pool); j++ {
			if assigned[j] {
				continue
			}
			allSimilar := true
			for _, member := range comp {
				if !hasEdge(edges, member, j) {
					allSimilar = false
					break
				}
			}
			if allSimilar {
				comp = append(comp, j)
				assigned[j] = true
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

func hasEdge(edges map[[2]int]bool, a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return edges[[2]int{a, b}]
}
