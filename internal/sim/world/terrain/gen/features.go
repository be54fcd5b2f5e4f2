package gen

import (
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/mathx"
	"deepdelve.ai/internal/sim/world/logic/rng"
)

// Features are world-space points produced for one chunk.
type Features struct {
	Spawners    []geom.Vec2
	Chests      []geom.Vec2
	Decorations []geom.Vec2
}

type featurePlacer struct {
	r      *rng.Random
	p      Params
	origin geom.Vec2
	out    Features

	// onPlace, when set, sees every accepted point in room-local space with
	// the spacing it was checked against.
	onPlace func(rm Room, pos geom.Vec2, spacing float64)
}

// position picks a spot in rm that keeps its distance from the room's
// earlier features, or reports false after the attempt budget.
func (fp *featurePlacer) position(rm Room, placed *[]geom.Vec2) (geom.Vec2, bool) {
	length := float64(mathx.MaxInt(rm.W, rm.H))
	spacing := length / float64(len(*placed)+1) * fp.p.FeatureSpacing

next:
	for i := 0; i < fp.p.FeatureAttempts; i++ {
		pos := rm.featurePosition(fp.r, fp.p.FeatureInset)
		for _, o := range *placed {
			if pos.TaxicabDistance(o) < spacing {
				continue next
			}
		}
		*placed = append(*placed, pos)
		if fp.onPlace != nil {
			fp.onPlace(rm, pos, spacing)
		}
		return pos, true
	}
	return geom.Vec2{}, false
}

func (fp *featurePlacer) canAddChest(rm Room) bool {
	if rm.Starting {
		return false
	}
	center := rm.Center().Start().Add(fp.origin)
	limit := fp.p.ChestDistance * fp.p.ChestDistance
	for _, c := range fp.out.Chests {
		if center.DistanceSquared(c) < limit {
			return false
		}
	}
	return true
}

func (fp *featurePlacer) room(rm Room) {
	var placed []geom.Vec2

	if fp.canAddChest(rm) {
		if pos, ok := fp.position(rm, &placed); ok {
			fp.out.Chests = append(fp.out.Chests, pos.Add(fp.origin))
		}
	}

	if rm.Starting {
		pos := rm.Center().Center().Add(geom.V(float64(fp.p.StartingRoomShift), 0))
		placed = append(placed, pos)
		if fp.onPlace != nil {
			fp.onPlace(rm, pos, 0)
		}
		fp.out.Spawners = append(fp.out.Spawners, pos.Add(fp.origin))
	} else {
		n := mathx.MaxInt(rm.W, rm.H) / fp.p.SideLengthPerSpawner
		for i := 0; i < n; i++ {
			if pos, ok := fp.position(rm, &placed); ok {
				fp.out.Spawners = append(fp.out.Spawners, pos.Add(fp.origin))
			}
		}
	}

	n := fp.r.NextBinomial(rm.W*rm.H, fp.p.DecorationChance)
	for i := 0; i < n; i++ {
		if pos, ok := fp.position(rm, &placed); ok {
			fp.out.Decorations = append(fp.out.Decorations, pos.Add(fp.origin))
		}
	}
}

func placeFeatures(r *rng.Random, rooms []Room, origin geom.Vec2, p Params) Features {
	fp := &featurePlacer{r: r, p: p, origin: origin}
	for _, rm := range rooms {
		fp.room(rm)
	}
	return fp.out
}
