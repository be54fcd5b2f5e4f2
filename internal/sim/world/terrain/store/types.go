package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// Chunk is one generated 50×50 block of the world. Feature points are world
// space. Tiles may change afterwards through Set; features never move.
type Chunk struct {
	Coord geom.Coord

	tiles       tile.Grid
	spawners    []geom.Vec2
	chests      []*Chest
	decorations []geom.Vec2

	dirty bool
	hash  [32]byte
}

// Start is the world coordinate of local (0, 0).
func (c *Chunk) Start() geom.Coord { return tile.ChunkStart(c.Coord) }

func (c *Chunk) At(local geom.Coord) tile.Tile { return c.tiles.At(local) }

func (c *Chunk) Set(local geom.Coord, t tile.Tile) {
	if c.tiles.Set(local, t) {
		c.dirty = true
	}
}

// Tiles returns a row-major copy of the grid.
func (c *Chunk) Tiles() []tile.Tile { return c.tiles.Tiles() }

func (c *Chunk) Count(t tile.Tile) int { return c.tiles.Count(t) }

// The slices below are owned by the chunk; callers must not modify them.
func (c *Chunk) Spawners() []geom.Vec2    { return c.spawners }
func (c *Chunk) Chests() []*Chest         { return c.chests }
func (c *Chunk) Decorations() []geom.Vec2 { return c.decorations }

// Digest covers tiles and feature positions, not chest state.
func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [8]byte
		for _, t := range c.tiles.Tiles() {
			h.Write([]byte{byte(t)})
		}
		writePoints := func(ps []geom.Vec2) {
			binary.LittleEndian.PutUint64(tmp[:], uint64(len(ps)))
			h.Write(tmp[:])
			for _, p := range ps {
				binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(p.X))
				h.Write(tmp[:])
				binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(p.Y))
				h.Write(tmp[:])
			}
		}
		writePoints(c.spawners)
		chests := make([]geom.Vec2, len(c.chests))
		for i, ch := range c.chests {
			chests[i] = ch.Position()
		}
		writePoints(chests)
		writePoints(c.decorations)
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

func (c *Chunk) DigestHex() string {
	d := c.Digest()
	return hex.EncodeToString(d[:])
}
