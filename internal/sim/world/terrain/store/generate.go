package store

import (
	"fmt"
	"time"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/gen"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// GenerationError wraps a failed chunk generation.
type GenerationError struct {
	Seed  uint32
	Chunk geom.Coord
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate chunk %v (seed %d): %v", e.Chunk, e.Seed, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Build generates a chunk without touching any store.
func Build(seed uint32, key geom.Coord, p gen.Params) (*Chunk, Report, error) {
	start := time.Now()
	ch := &Chunk{Coord: key}
	lay, err := gen.Generate(&ch.tiles, key, seed, p)
	if err != nil {
		return nil, Report{}, &GenerationError{Seed: seed, Chunk: key, Err: err}
	}

	ch.spawners = lay.Spawners
	ch.decorations = lay.Decorations
	ch.chests = make([]*Chest, 0, len(lay.Chests))
	for _, pos := range lay.Chests {
		ch.chests = append(ch.chests, NewChest(pos))
	}
	ch.dirty = true

	rep := Report{
		Seed:        seed,
		Chunk:       key,
		Digest:      ch.DigestHex(),
		Rooms:       len(lay.Rooms),
		Tunnels:     len(lay.Tree) + len(lay.Extra),
		Entries:     len(lay.Entries),
		Barriers:    len(lay.Barriers),
		Floor:       ch.Count(tile.Floor),
		Spawners:    len(lay.Spawners),
		Chests:      len(lay.Chests),
		Decorations: len(lay.Decorations),
		Duration:    time.Since(start),
	}
	return ch, rep, nil
}
