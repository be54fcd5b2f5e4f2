package world

import (
	"math"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/movement"
)

const (
	straightCost = 10
	diagonalCost = 14
)

type pathProblem struct {
	m         *Map
	targets   []geom.Coord
	threshold float64
}

func (p *pathProblem) walkable(c geom.Coord) bool { return p.m.At(c).Walkable() }

// inRange keeps the search inside threshold of the nearest target, compared
// in tenths like the step costs.
func (p *pathProblem) inRange(c geom.Coord) bool {
	best := math.Inf(1)
	for _, t := range p.targets {
		d := c.Center().DistanceSquared(t.Center()) * straightCost
		if d < best {
			best = d
		}
	}
	return best <= p.threshold*p.threshold
}

func (p *pathProblem) Successors(c geom.Coord, buf []movement.Step) []movement.Step {
	for _, n := range [4]geom.Coord{c.Top(), c.Left(), c.Right(), c.Bottom()} {
		if p.walkable(n) && p.inRange(n) {
			buf = append(buf, movement.Step{To: n, Cost: straightCost})
		}
	}
	diagonals := [4][3]geom.Coord{
		{c.TopRight(), c.Top(), c.Right()},
		{c.BottomRight(), c.Bottom(), c.Right()},
		{c.BottomLeft(), c.Bottom(), c.Left()},
		{c.TopLeft(), c.Top(), c.Left()},
	}
	for _, d := range diagonals {
		if p.walkable(d[0]) && p.walkable(d[1]) && p.walkable(d[2]) && p.inRange(d[0]) {
			buf = append(buf, movement.Step{To: d[0], Cost: diagonalCost})
		}
	}
	return buf
}

func (p *pathProblem) Heuristic(c geom.Coord) int {
	best := math.MaxInt
	for _, t := range p.targets {
		h := int(c.Center().Distance(t.Center()) * straightCost)
		if h < best {
			best = h
		}
	}
	return best
}

func (p *pathProblem) Goal(c geom.Coord) bool {
	for _, t := range p.targets {
		if t == c {
			return true
		}
	}
	return false
}

// Pathfind searches from start to the nearest of targets over Floor tiles,
// moving in eight directions without cutting corners. Tiles farther than
// threshold from every target are never entered. The cost is in tiles,
// diagonals counting 1.4, rounded up. Start itself need not be walkable.
func (m *Map) Pathfind(start geom.Coord, targets []geom.Coord, threshold float64) ([]geom.Coord, int, bool) {
	if len(targets) == 0 {
		return nil, 0, false
	}
	p := &pathProblem{m: m, targets: targets, threshold: threshold}
	path, cost, ok := movement.Astar(start, p, m.cfg.PathfindNodeLimit)
	if !ok {
		return nil, 0, false
	}
	return path, (cost + straightCost - 1) / straightCost, true
}
