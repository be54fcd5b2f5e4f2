package world

import (
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/store"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

type Chunk = store.Chunk
type Chest = store.Chest

// Map is the infinite tile world. Chunks are generated on first touch and
// kept forever. A Map is owned by one goroutine; see Runner.
type Map struct {
	cfg    MapConfig
	chunks *store.ChunkStore
}

func NewMap(cfg MapConfig) *Map {
	return &Map{cfg: cfg, chunks: store.NewChunkStore(cfg.Seed, cfg.Gen)}
}

func (m *Map) Seed() uint32 { return m.cfg.Seed }

// Store exposes the chunk store for observers and diagnostics.
func (m *Map) Store() *store.ChunkStore { return m.chunks }

// ChunkOf maps a world coordinate to (chunk, local).
func ChunkOf(world geom.Coord) (chunk, local geom.Coord) { return tile.Split(world) }

// WorldOf is the inverse of ChunkOf.
func WorldOf(chunk, local geom.Coord) geom.Coord { return tile.Join(chunk, local) }

func (m *Map) At(c geom.Coord) tile.Tile {
	chunk, local := tile.Split(c)
	return m.chunks.At(chunk).At(local)
}

func (m *Map) Set(c geom.Coord, t tile.Tile) {
	chunk, local := tile.Split(c)
	m.chunks.At(chunk).Set(local, t)
}

// RemoveBarrier opens a barrier tile and reports whether one was there.
func (m *Map) RemoveBarrier(c geom.Coord) bool {
	if m.At(c) != tile.Barrier {
		return false
	}
	m.Set(c, tile.Floor)
	return true
}

// Chunk returns the chunk at a chunk coordinate. Repeated calls return the
// same *Chunk.
func (m *Map) Chunk(chunk geom.Coord) *Chunk { return m.chunks.At(chunk) }

// chunksIn lists the chunks a rectangle overlaps, generating as needed.
func (m *Map) chunksIn(r geom.Rect) []*Chunk {
	lo, _ := tile.Split(r.Min().Coord())
	hi, _ := tile.Split(r.Max().Coord())
	keys := geom.Between(lo, hi)
	out := make([]*Chunk, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.chunks.At(k))
	}
	return out
}

func pointsIn(chunks []*Chunk, r geom.Rect, pick func(*Chunk) []geom.Vec2) []geom.Vec2 {
	var out []geom.Vec2
	for _, ch := range chunks {
		for _, p := range pick(ch) {
			if r.Contains(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

func (m *Map) SpawnersIn(r geom.Rect) []geom.Vec2 {
	return pointsIn(m.chunksIn(r), r, (*Chunk).Spawners)
}

func (m *Map) DecorationsIn(r geom.Rect) []geom.Vec2 {
	return pointsIn(m.chunksIn(r), r, (*Chunk).Decorations)
}

// ChestsIn returns the live chests; callers may open and loot them.
func (m *Map) ChestsIn(r geom.Rect) []*Chest {
	var out []*Chest
	for _, ch := range m.chunksIn(r) {
		for _, c := range ch.Chests() {
			if r.Contains(c.Position()) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ChestAt returns the chest whose bounds contain p.
func (m *Map) ChestAt(p geom.Vec2) (*Chest, bool) {
	for _, c := range m.ChestsIn(geom.Focused(p, geom.V(1, 1))) {
		if c.Bounds().Contains(p) {
			return c, true
		}
	}
	return nil, false
}
