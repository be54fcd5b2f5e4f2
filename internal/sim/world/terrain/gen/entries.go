package gen

import (
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/mathx"
	"deepdelve.ai/internal/sim/world/logic/rng"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// SideEntries returns the entry offsets along one chunk side. Both chunks
// sharing that side derive it from the same key, so their openings meet.
// Vertical selects the bottom/top sides.
func SideEntries(key geom.Coord, vertical bool, tilesPerEntry int) []int {
	h := mathx.Hash32(key.X, key.Y)
	if vertical {
		h *= 31
	}
	r := rng.New(h)

	count := tile.Size / tilesPerEntry
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		base := uint32(i * tilesPerEntry)
		out = append(out, int(r.NextU32In(base+1, base+uint32(tilesPerEntry)-1)))
	}
	return out
}

// Entries lists the local entry tiles of chunk: left, bottom, top, right.
func Entries(chunk geom.Coord, tilesPerEntry int) []geom.Coord {
	var out []geom.Coord
	for _, n := range SideEntries(chunk, false, tilesPerEntry) {
		out = append(out, geom.C(0, n))
	}
	for _, n := range SideEntries(chunk, true, tilesPerEntry) {
		out = append(out, geom.C(n, 0))
	}
	for _, n := range SideEntries(chunk.Top(), true, tilesPerEntry) {
		out = append(out, geom.C(n, tile.Size-1))
	}
	for _, n := range SideEntries(chunk.Right(), false, tilesPerEntry) {
		out = append(out, geom.C(tile.Size-1, n))
	}
	return out
}
