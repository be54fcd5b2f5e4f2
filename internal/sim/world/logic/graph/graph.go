// Package graph connects room centres: a Kruskal minimum spanning tree over
// weighted edges plus randomly kept extra edges for loops.
package graph

import (
	"sort"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/rng"
)

type Edge struct {
	A, B   geom.Coord
	Weight float64
}

func NewEdge(a, b geom.Coord) Edge {
	return Edge{A: a, B: b, Weight: a.EuclideanDistance(b)}
}

type unionFind struct {
	parent map[geom.Coord]geom.Coord
	rank   map[geom.Coord]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[geom.Coord]geom.Coord{}, rank: map[geom.Coord]int{}}
}

func (u *unionFind) find(c geom.Coord) geom.Coord {
	p, ok := u.parent[c]
	if !ok {
		u.parent[c] = c
		return c
	}
	if p == c {
		return c
	}
	root := u.find(p)
	u.parent[c] = root
	return root
}

func (u *unionFind) union(a, b geom.Coord) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}

// Kruskal returns a minimum spanning forest of edges. Equal weights keep
// their input order.
func Kruskal(edges []Edge) []Edge {
	sorted := append([]Edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight < sorted[j].Weight })

	uf := newUnionFind()
	var out []Edge
	for _, e := range sorted {
		if uf.union(e.A, e.B) {
			out = append(out, e)
		}
	}
	return out
}

// Complete returns every pair of nodes as an edge, in index order.
func Complete(nodes []geom.Coord) []Edge {
	var out []Edge
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			out = append(out, NewEdge(nodes[i], nodes[j]))
		}
	}
	return out
}

// Spans reports whether edges connect every node into one component.
func Spans(nodes []geom.Coord, edges []Edge) bool {
	if len(nodes) <= 1 {
		return true
	}
	uf := newUnionFind()
	for _, e := range edges {
		uf.union(e.A, e.B)
	}
	root := uf.find(nodes[0])
	for _, n := range nodes[1:] {
		if uf.find(n) != root {
			return false
		}
	}
	return true
}

// Connect returns the spanning tree followed by the extra edges. Every
// candidate edge, tree edges included, is kept again with extraChance.
// When candidates cannot span the nodes the tree is taken from the complete
// graph instead.
func Connect(r *rng.Random, nodes []geom.Coord, candidates []Edge, extraChance float64) (tree, extra []Edge) {
	tree = Kruskal(candidates)
	if !Spans(nodes, tree) {
		tree = Kruskal(Complete(nodes))
	}
	for _, e := range candidates {
		if r.NextF64() < extraChance {
			extra = append(extra, e)
		}
	}
	return tree, extra
}
