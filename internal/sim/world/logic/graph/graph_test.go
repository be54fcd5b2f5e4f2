package graph

import (
	"testing"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/rng"
)

func TestKruskalPicksLightestTree(t *testing.T) {
	a, b, c, d := geom.C(0, 0), geom.C(10, 0), geom.C(10, 10), geom.C(0, 10)
	edges := []Edge{
		NewEdge(a, c), // diagonal
		NewEdge(a, b),
		NewEdge(b, c),
		NewEdge(c, d),
		NewEdge(d, a),
		NewEdge(b, d), // diagonal
	}
	tree := Kruskal(edges)
	if len(tree) != 3 {
		t.Fatalf("tree size: got %d want 3", len(tree))
	}
	for _, e := range tree {
		if e.Weight > 10.5 {
			t.Fatalf("tree should not use a diagonal: %+v", e)
		}
	}
	if !Spans([]geom.Coord{a, b, c, d}, tree) {
		t.Fatalf("tree should span all nodes")
	}
}

func TestConnectFallsBackToCompleteGraph(t *testing.T) {
	nodes := []geom.Coord{geom.C(1, 1), geom.C(20, 1)}
	tree, extra := Connect(rng.New(1), nodes, nil, 0.33)
	if len(tree) != 1 {
		t.Fatalf("two nodes need one edge, got %d", len(tree))
	}
	if len(extra) != 0 {
		t.Fatalf("no candidates means no extras, got %d", len(extra))
	}
}

func TestConnectExtraChanceExtremes(t *testing.T) {
	nodes := []geom.Coord{geom.C(0, 0), geom.C(5, 0), geom.C(0, 5)}
	cands := []Edge{NewEdge(nodes[0], nodes[1]), NewEdge(nodes[1], nodes[2]), NewEdge(nodes[2], nodes[0])}

	_, extra := Connect(rng.New(3), nodes, cands, 0)
	if len(extra) != 0 {
		t.Fatalf("chance 0: got %d extras", len(extra))
	}
	_, extra = Connect(rng.New(3), nodes, cands, 1.01)
	if len(extra) != len(cands) {
		t.Fatalf("chance >1: got %d extras want %d", len(extra), len(cands))
	}
}
