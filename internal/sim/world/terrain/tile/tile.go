package tile

import (
	"fmt"
	"strings"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

// Size is the side length of a chunk in tiles.
const Size = 50

type Tile uint8

const (
	Wall Tile = iota
	Floor
	Barrier
)

func (t Tile) String() string {
	switch t {
	case Wall:
		return "WALL"
	case Floor:
		return "FLOOR"
	case Barrier:
		return "BARRIER"
	default:
		return fmt.Sprintf("Tile(%d)", uint8(t))
	}
}

// Parse accepts the names produced by String, case-insensitively.
func Parse(s string) (Tile, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WALL":
		return Wall, nil
	case "FLOOR":
		return Floor, nil
	case "BARRIER":
		return Barrier, nil
	}
	return Wall, fmt.Errorf("unknown tile %q", s)
}

// Placed reports whether anything but solid rock occupies the tile.
func (t Tile) Placed() bool { return t != Wall }

// Walkable is true only for Floor; barriers block until removed.
func (t Tile) Walkable() bool { return t == Floor }

// Glyph is the one-character form used by text dumps.
func (t Tile) Glyph() byte {
	switch t {
	case Floor:
		return '.'
	case Barrier:
		return '+'
	default:
		return '#'
	}
}

// Grid is a Size×Size tile array indexed by local coordinates. The zero
// value is all Wall.
type Grid struct {
	tiles [Size * Size]Tile
}

func InBounds(c geom.Coord) bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

func index(c geom.Coord) int { return c.X + c.Y*Size }

// At returns Wall outside the grid.
func (g *Grid) At(c geom.Coord) Tile {
	if !InBounds(c) {
		return Wall
	}
	return g.tiles[index(c)]
}

// Set reports whether the tile changed.
func (g *Grid) Set(c geom.Coord, t Tile) bool {
	if !InBounds(c) {
		return false
	}
	i := index(c)
	if g.tiles[i] == t {
		return false
	}
	g.tiles[i] = t
	return true
}

// Tiles returns a copy in row-major order (y outer).
func (g *Grid) Tiles() []Tile {
	out := make([]Tile, len(g.tiles))
	copy(out, g.tiles[:])
	return out
}

func (g *Grid) Count(t Tile) int {
	n := 0
	for _, v := range g.tiles {
		if v == t {
			n++
		}
	}
	return n
}

// ChunkStart is the world coordinate of local (0, 0) in chunk. Chunk (0, 0)
// is centred on the world origin.
func ChunkStart(chunk geom.Coord) geom.Coord {
	return chunk.Scale(Size).AddN(-Size / 2)
}

// Split maps a world coordinate to its chunk and local coordinate.
func Split(world geom.Coord) (chunk, local geom.Coord) {
	return world.AddN(Size / 2).Chunk(Size)
}

// Join is the inverse of Split.
func Join(chunk, local geom.Coord) geom.Coord {
	return ChunkStart(chunk).Add(local)
}
