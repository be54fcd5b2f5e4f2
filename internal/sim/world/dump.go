package world

import (
	"strings"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

// RenderASCII draws the inclusive box [min, max] top row first. Spawners
// show as 'S', chests as 'C', decorations as '*'.
func (m *Map) RenderASCII(min, max geom.Coord) string {
	if max.X < min.X || max.Y < min.Y {
		return ""
	}
	area := geom.RectBetween(min.Start(), max.AddN(1).Start())
	marks := map[geom.Coord]byte{}
	for _, p := range m.DecorationsIn(area) {
		marks[p.Coord()] = '*'
	}
	for _, p := range m.SpawnersIn(area) {
		marks[p.Coord()] = 'S'
	}
	for _, c := range m.ChestsIn(area) {
		marks[c.Position().Coord()] = 'C'
	}

	var b strings.Builder
	for y := max.Y; y >= min.Y; y-- {
		for x := min.X; x <= max.X; x++ {
			c := geom.C(x, y)
			if g, ok := marks[c]; ok {
				b.WriteByte(g)
				continue
			}
			b.WriteByte(m.At(c).Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
