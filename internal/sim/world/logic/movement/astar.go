package movement

import (
	"github.com/zyedidia/generic/heap"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

type Step struct {
	To   geom.Coord
	Cost int
}

// Problem describes one search. Successors appends to buf and returns it.
type Problem interface {
	Successors(c geom.Coord, buf []Step) []Step
	Heuristic(c geom.Coord) int
	Goal(c geom.Coord) bool
}

type openNode struct {
	c   geom.Coord
	g   int
	f   int
	seq int
}

// Astar returns the path from start to the first goal popped, both ends
// included, and its total cost. Ties on f prefer the larger g, then the
// earlier insertion, so results are stable. maxExpanded bounds the number of
// expanded nodes; 0 means no bound.
func Astar(start geom.Coord, p Problem, maxExpanded int) ([]geom.Coord, int, bool) {
	open := heap.New[openNode](func(a, b openNode) bool {
		if a.f != b.f {
			return a.f < b.f
		}
		if a.g != b.g {
			return a.g > b.g
		}
		return a.seq < b.seq
	})
	best := map[geom.Coord]int{start: 0}
	parent := map[geom.Coord]geom.Coord{}
	closed := map[geom.Coord]bool{}
	open.Push(openNode{c: start, f: p.Heuristic(start)})

	var buf []Step
	seq := 0
	expanded := 0
	for open.Size() > 0 {
		n, _ := open.Pop()
		if closed[n.c] || n.g > best[n.c] {
			continue
		}
		if p.Goal(n.c) {
			return rebuild(parent, n.c), n.g, true
		}
		closed[n.c] = true

		expanded++
		if maxExpanded > 0 && expanded > maxExpanded {
			return nil, 0, false
		}

		buf = p.Successors(n.c, buf[:0])
		for _, s := range buf {
			if closed[s.To] {
				continue
			}
			g := n.g + s.Cost
			if old, seen := best[s.To]; seen && old <= g {
				continue
			}
			best[s.To] = g
			parent[s.To] = n.c
			seq++
			open.Push(openNode{c: s.To, g: g, f: g + p.Heuristic(s.To), seq: seq})
		}
	}
	return nil, 0, false
}

func rebuild(parent map[geom.Coord]geom.Coord, end geom.Coord) []geom.Coord {
	path := []geom.Coord{end}
	for c := end; ; {
		prev, ok := parent[c]
		if !ok {
			break
		}
		path = append(path, prev)
		c = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
