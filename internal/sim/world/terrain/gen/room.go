package gen

import (
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/mathx"
	"deepdelve.ai/internal/sim/world/logic/rng"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// Room is a rectangle of floor in local chunk coordinates. Rooms exist only
// while a chunk is generated.
type Room struct {
	X, Y     int
	W, H     int
	Starting bool
}

func startingRoom(p Params) Room {
	return Room{
		X:        tile.Size/2 - p.StartingRoomWidth/2 + p.StartingRoomShift,
		Y:        tile.Size/2 - p.StartingRoomHeight/2,
		W:        p.StartingRoomWidth,
		H:        p.StartingRoomHeight,
		Starting: true,
	}
}

func randomRoom(r *rng.Random, p Params) Room {
	w := r.NextBinomialBetween(p.MinRoomSize, p.AvgRoomSize, p.MaxRoomSize)
	minH := mathx.MaxInt(w-2, p.MinRoomSize)
	maxH := mathx.MinInt(w+3, p.MaxRoomSize)
	h := r.NextBinomialBetween(minH, float64(w), maxH)

	return Room{
		X: r.NextIntIn(0, tile.Size-w-1),
		Y: r.NextIntIn(0, tile.Size-h-1),
		W: w,
		H: h,
	}
}

// Min is the bottom-left tile.
func (rm Room) Min() geom.Coord { return geom.C(rm.X, rm.Y) }

// Max is one past the top-right tile on both axes.
func (rm Room) Max() geom.Coord { return geom.C(rm.X+rm.W, rm.Y+rm.H) }

func (rm Room) Center() geom.Coord { return geom.C(rm.X+rm.W/2, rm.Y+rm.H/2) }

func (rm Room) Contains(c geom.Coord) bool {
	return c.X >= rm.X && c.X < rm.X+rm.W && c.Y >= rm.Y && c.Y < rm.Y+rm.H
}

func (rm Room) Tiles() []geom.Coord {
	return geom.Between(rm.Min(), rm.Max().AddN(-1))
}

// Ring lists the tiles one step outside the room: bottom, left, right, top
// edges in that order. Corners appear twice.
func (rm Room) Ring() []geom.Coord {
	bl := rm.Min().AddN(-1)
	tr := rm.Max()
	tl := geom.C(bl.X, tr.Y)
	br := geom.C(tr.X, bl.Y)

	var out []geom.Coord
	out = append(out, geom.Between(bl, br)...)
	out = append(out, geom.Between(bl, tl)...)
	out = append(out, geom.Between(br, tr)...)
	out = append(out, geom.Between(tl, tr)...)
	return out
}

// OnRing reports whether c lies within the room grown by one tile.
func (rm Room) OnRing(c geom.Coord) bool {
	return c.InBox(rm.Min().AddN(-1), rm.Max())
}

// Distance is the per-axis gap between the rooms' spans, summed. Rooms that
// touch or overlap are at distance 0.
func (rm Room) Distance(o Room) int {
	return spanGap(rm.X, rm.X+rm.W, o.X, o.X+o.W) + spanGap(rm.Y, rm.Y+rm.H, o.Y, o.Y+o.H)
}

func spanGap(aMin, aMax, bMin, bMax int) int {
	if aMax >= bMin && aMin <= bMax {
		return 0
	}
	return mathx.MinInt(mathx.AbsInt(aMax-bMin), mathx.AbsInt(aMin-bMax))
}

func (rm Room) featurePosition(r *rng.Random, inset float64) geom.Vec2 {
	min := rm.Min().Start().AddN(inset)
	max := rm.Max().Start().AddN(-inset)
	x := r.NextF64In(min.X, max.X)
	y := r.NextF64In(min.Y, max.Y)
	return geom.V(x, y)
}

func placeRooms(r *rng.Random, chunk geom.Coord, p Params) []Room {
	var rooms []Room
	if chunk == (geom.Coord{}) {
		rooms = append(rooms, startingRoom(p))
	}

	for i := 0; i < p.MaxRoomAttempts; i++ {
		room := randomRoom(r, p)
		ok := true
		for _, other := range rooms {
			if room.Distance(other) < p.RoomGap {
				ok = false
				break
			}
		}
		if ok {
			rooms = append(rooms, room)
		}
	}
	return rooms
}
