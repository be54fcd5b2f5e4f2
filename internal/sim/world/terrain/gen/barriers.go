package gen

import (
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/rng"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// doorway reports a floor tile pinched between walls on one axis and open on
// the other.
func doorway(g *tile.Grid, c geom.Coord) bool {
	top, bottom := g.At(c.Top()), g.At(c.Bottom())
	left, right := g.At(c.Left()), g.At(c.Right())

	vertical := top != tile.Wall && bottom != tile.Wall && left == tile.Wall && right == tile.Wall
	horizontal := left != tile.Wall && right != tile.Wall && top == tile.Wall && bottom == tile.Wall
	return vertical || horizontal
}

// placeBarriers closes room doorways. It returns the candidate sites in order
// and the subset that became barriers.
func placeBarriers(g *tile.Grid, rooms []Room, r *rng.Random, p Params) (sites, barriers []geom.Coord) {
	if len(rooms) == 0 {
		return nil, nil
	}
	lo := geom.C(1, 1)
	hi := geom.C(tile.Size-2, tile.Size-2)
	first := rooms[0]

	for _, rm := range rooms {
		for _, c := range rm.Ring() {
			if !c.InBox(lo, hi) {
				continue
			}
			if g.At(c) != tile.Floor || !doorway(g, c) {
				continue
			}
			nearby := false
			for _, o := range sites {
				if c.Distance(o) <= 1 {
					nearby = true
					break
				}
			}
			if nearby {
				continue
			}
			sites = append(sites, c)

			if r.NextF64() < p.BarrierChance || first.OnRing(c) {
				g.Set(c, tile.Barrier)
				barriers = append(barriers, c)
			}
		}
	}
	return sites, barriers
}
