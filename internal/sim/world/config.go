package world

import "deepdelve.ai/internal/sim/world/terrain/gen"

type MapConfig struct {
	Seed uint32
	Gen  gen.Params

	// PathfindNodeLimit caps nodes expanded per Pathfind call. 0 means no
	// cap; an unreachable target with an unbounded threshold then searches
	// forever.
	PathfindNodeLimit int
}

func DefaultMapConfig(seed uint32) MapConfig {
	return MapConfig{Seed: seed, Gen: gen.DefaultParams()}
}
