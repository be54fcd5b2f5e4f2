// Package gen turns (seed, chunk coordinate) into a chunk's tiles and
// feature points. Everything here is a pure function of its inputs.
package gen

import (
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/graph"
	"deepdelve.ai/internal/sim/world/logic/mathx"
	"deepdelve.ai/internal/sim/world/logic/rng"
	"deepdelve.ai/internal/sim/world/logic/triangulation"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// Layout describes what Generate built. Room and edge coordinates are local
// to the chunk; feature points are world space.
type Layout struct {
	Chunk    geom.Coord
	Rooms    []Room
	Tree     []graph.Edge
	Extra    []graph.Edge
	Entries  []geom.Coord
	Sites    []geom.Coord
	Barriers []geom.Coord
	Features
}

// ChunkSeed is the seed of the chunk's random stream.
func ChunkSeed(seed uint32, chunk geom.Coord) uint32 {
	return mathx.Hash32(chunk.X, chunk.Y) + seed
}

// Generate fills an all-wall grid for chunk. It fails only when a tunnel or
// entry cannot be carved, which indicates a broken invariant.
func Generate(g *tile.Grid, chunk geom.Coord, seed uint32, p Params) (*Layout, error) {
	p = p.withDefaults()
	r := rng.New(ChunkSeed(seed, chunk))
	lay := &Layout{Chunk: chunk}

	lay.Rooms = placeRooms(r, chunk, p)
	for _, rm := range lay.Rooms {
		for _, c := range rm.Tiles() {
			g.Set(c, tile.Floor)
		}
	}

	cv := newCarver(chunk, g, awkwardPoints(lay.Rooms), p)
	if err := connectRooms(cv, r, lay, p); err != nil {
		return nil, err
	}

	lay.Entries = Entries(chunk, p.TilesPerEntry)
	for _, e := range lay.Entries {
		if err := cv.entry(e); err != nil {
			return nil, err
		}
	}

	lay.Sites, lay.Barriers = placeBarriers(g, lay.Rooms, r, p)
	lay.Features = placeFeatures(r, lay.Rooms, tile.ChunkStart(chunk).Start(), p)
	return lay, nil
}

func connectRooms(cv *carver, r *rng.Random, lay *Layout, p Params) error {
	nodes := make([]geom.Coord, len(lay.Rooms))
	vertices := make([]geom.Vec2, len(lay.Rooms))
	for i, rm := range lay.Rooms {
		nodes[i] = rm.Center()
		vertices[i] = rm.Center().Center()
	}

	var candidates []graph.Edge
	for _, e := range triangulation.UniqueEdges(triangulation.Triangulate(vertices)) {
		candidates = append(candidates, graph.NewEdge(e[0].Coord(), e[1].Coord()))
	}

	lay.Tree, lay.Extra = graph.Connect(r, nodes, candidates, p.ExtraEdgeChance)
	for _, e := range lay.Tree {
		if err := cv.tunnel(e.A, e.B); err != nil {
			return err
		}
	}
	for _, e := range lay.Extra {
		if err := cv.tunnel(e.A, e.B); err != nil {
			return err
		}
	}
	return nil
}
