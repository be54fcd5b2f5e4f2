package gen

import (
	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

func toPoint(c geom.Coord) gruid.Point { return gruid.Point{X: c.X, Y: c.Y} }
func toCoord(p gruid.Point) geom.Coord { return geom.C(p.X, p.Y) }

// awkwardPoints marks the tiles hugging each room corner and the chunk
// border. Tunnels pay extra to cross them.
func awkwardPoints(rooms []Room) mapset.Set[geom.Coord] {
	set := mapset.New[geom.Coord]()
	for _, rm := range rooms {
		x0, y0 := rm.X, rm.Y
		x1, y1 := rm.X+rm.W, rm.Y+rm.H

		set.Put(geom.C(x0-1, y0-1))
		set.Put(geom.C(x0, y0-1))
		set.Put(geom.C(x0-1, y0))

		set.Put(geom.C(x1, y0-1))
		set.Put(geom.C(x1-1, y0-1))
		set.Put(geom.C(x1, y0))

		set.Put(geom.C(x0-1, y1))
		set.Put(geom.C(x0, y1))
		set.Put(geom.C(x0-1, y1-1))

		set.Put(geom.C(x1, y1))
		set.Put(geom.C(x1-1, y1))
		set.Put(geom.C(x1, y1-1))
	}
	for i := 0; i < tile.Size; i++ {
		set.Put(geom.C(i, 0))
		set.Put(geom.C(0, i))
		set.Put(geom.C(i, tile.Size-1))
		set.Put(geom.C(tile.Size-1, i))
	}
	return set
}

// carver digs tunnels through one chunk grid. It implements paths.Astar.
type carver struct {
	chunk   geom.Coord
	grid    *tile.Grid
	awkward mapset.Set[geom.Coord]
	params  Params

	pr *paths.PathRange
	nb paths.Neighbors
}

func newCarver(chunk geom.Coord, grid *tile.Grid, awkward mapset.Set[geom.Coord], p Params) *carver {
	return &carver{
		chunk:   chunk,
		grid:    grid,
		awkward: awkward,
		params:  p,
		pr:      paths.NewPathRange(gruid.NewRange(0, 0, tile.Size, tile.Size)),
	}
}

// cost of stepping onto c.
func (cv *carver) cost(c geom.Coord) int {
	if cv.grid.At(c) != tile.Wall {
		return 1
	}
	if cv.awkward.Has(c) {
		return cv.params.TunnelCost * cv.params.AwkwardMultiplier
	}
	return cv.params.TunnelCost
}

func (cv *carver) Neighbors(p gruid.Point) []gruid.Point {
	return cv.nb.Cardinal(p, func(q gruid.Point) bool { return tile.InBounds(toCoord(q)) })
}

func (cv *carver) Cost(_, q gruid.Point) int { return cv.cost(toCoord(q)) }

func (cv *carver) Estimation(p, q gruid.Point) int { return paths.DistanceManhattan(p, q) }

func (cv *carver) fill(path []geom.Coord) {
	for _, c := range path {
		if cv.grid.At(c) == tile.Wall {
			cv.grid.Set(c, tile.Floor)
		}
	}
}

// tunnel carves the cheapest path between two local coordinates.
func (cv *carver) tunnel(from, to geom.Coord) error {
	if !tile.InBounds(from) || !tile.InBounds(to) {
		return &CarveError{Chunk: cv.chunk, Kind: kindTunnel, From: from, To: to, Err: ErrOutOfBounds}
	}
	pts := cv.pr.AstarPath(cv, toPoint(from), toPoint(to))
	if len(pts) == 0 {
		return &CarveError{Chunk: cv.chunk, Kind: kindTunnel, From: from, To: to, Err: ErrNoPath}
	}
	path := make([]geom.Coord, len(pts))
	for i, p := range pts {
		path[i] = toCoord(p)
	}
	cv.fill(path)
	return nil
}

type frontierNode struct {
	c    geom.Coord
	cost int
	seq  int
}

// entry carves from start to the nearest walkable tile (uniform-cost search
// under the tunnel cost model). Ties pop in insertion order.
func (cv *carver) entry(start geom.Coord) error {
	if !tile.InBounds(start) {
		return &CarveError{Chunk: cv.chunk, Kind: kindEntry, From: start, Err: ErrOutOfBounds}
	}

	open := heap.New[frontierNode](func(a, b frontierNode) bool {
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		return a.seq < b.seq
	})
	best := map[geom.Coord]int{start: 0}
	parent := map[geom.Coord]geom.Coord{}
	seq := 0
	open.Push(frontierNode{c: start})

	for open.Size() > 0 {
		n, _ := open.Pop()
		if n.cost > best[n.c] {
			continue
		}
		if cv.grid.At(n.c).Walkable() {
			var path []geom.Coord
			for c := n.c; ; {
				path = append(path, c)
				p, ok := parent[c]
				if !ok {
					break
				}
				c = p
			}
			cv.fill(path)
			return nil
		}
		for _, next := range n.c.Adjacent() {
			if !tile.InBounds(next) {
				continue
			}
			cost := n.cost + cv.cost(next)
			if old, seen := best[next]; seen && old <= cost {
				continue
			}
			best[next] = cost
			parent[next] = n.c
			seq++
			open.Push(frontierNode{c: next, cost: cost, seq: seq})
		}
	}
	return &CarveError{Chunk: cv.chunk, Kind: kindEntry, From: start, Err: ErrNoPath}
}
