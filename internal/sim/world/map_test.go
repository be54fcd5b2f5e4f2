package world

import (
	"math"
	"strings"
	"testing"

	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/gen"
	"deepdelve.ai/internal/sim/world/terrain/store"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

func newTestMap(seed uint32) *Map {
	cfg := DefaultMapConfig(seed)
	cfg.PathfindNodeLimit = 500000
	return NewMap(cfg)
}

func TestChunkOfWorldOfRoundTrip(t *testing.T) {
	for x := -101; x <= 101; x += 3 {
		for y := -77; y <= 77; y += 5 {
			w := geom.C(x, y)
			chunk, local := ChunkOf(w)
			if WorldOf(chunk, local) != w {
				t.Fatalf("round trip failed for %v", w)
			}
		}
	}
}

func TestAtAndSetAgree(t *testing.T) {
	m := newTestMap(9)
	c := geom.C(-26, 24)
	neighbours := map[geom.Coord]tile.Tile{}
	for _, n := range c.Adjacent() {
		neighbours[n] = m.At(n)
	}
	m.Set(c, tile.Barrier)
	if m.At(c) != tile.Barrier {
		t.Fatalf("At after Set: got %v", m.At(c))
	}
	for n, want := range neighbours {
		if m.At(n) != want {
			t.Fatalf("Set leaked into %v", n)
		}
	}
	chunk, local := ChunkOf(c)
	if m.Chunk(chunk).At(local) != tile.Barrier {
		t.Fatalf("chunk view disagrees with map view")
	}
}

func TestChunkIdentity(t *testing.T) {
	m := newTestMap(1)
	a := m.Chunk(geom.C(2, -3))
	m.Chunk(geom.C(0, 0))
	m.Chunk(geom.C(5, 5))
	if b := m.Chunk(geom.C(2, -3)); a != b {
		t.Fatalf("chunk handle changed between lookups")
	}
}

func TestDeterministicAcrossMaps(t *testing.T) {
	a := newTestMap(31337)
	b := newTestMap(31337)
	// Touch chunks in different orders.
	b.At(geom.C(80, 80))
	b.At(geom.C(-60, 10))
	for _, k := range []geom.Coord{geom.C(0, 0), geom.C(1, 1), geom.C(-1, 0)} {
		if a.Chunk(k).Digest() != b.Chunk(k).Digest() {
			t.Fatalf("chunk %v differs between maps", k)
		}
	}
}

func TestSeedZeroStartingRoom(t *testing.T) {
	m := newTestMap(0)
	room := geom.RectBetween(geom.V(-1, -2), geom.V(6, 3))
	for _, c := range room.Coords() {
		if !room.Contains(c.Start()) {
			continue
		}
		if m.At(c) != tile.Floor {
			t.Fatalf("starting room tile %v is %v", c, m.At(c))
		}
	}
	spawners := m.SpawnersIn(room)
	if len(spawners) != 1 || spawners[0] != geom.V(4.5, 0.5) {
		t.Fatalf("starting room spawners: %v", spawners)
	}
	if chests := m.ChestsIn(room); len(chests) != 0 {
		t.Fatalf("starting room chests: %d", len(chests))
	}
}

func TestRoomsConnectedOnceBarriersRemoved(t *testing.T) {
	for _, seed := range []uint32{0, 4} {
		m := newTestMap(seed)
		key := geom.C(0, 0)
		var g tile.Grid
		lay, err := gen.Generate(&g, key, seed, gen.DefaultParams())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		for _, b := range lay.Barriers {
			if !m.RemoveBarrier(WorldOf(key, b)) {
				t.Fatalf("expected barrier at %v", b)
			}
		}
		start := WorldOf(key, lay.Rooms[0].Center())
		for i, rm := range lay.Rooms[1:] {
			target := WorldOf(key, rm.Center())
			if _, _, ok := m.Pathfind(start, []geom.Coord{target}, math.Inf(1)); !ok {
				t.Fatalf("seed %d: room %d unreachable from room 0", seed, i+1)
			}
		}
	}
}

func TestPathfindEdgeCases(t *testing.T) {
	m := newTestMap(0)
	if _, _, ok := m.Pathfind(geom.C(0, 0), nil, math.Inf(1)); ok {
		t.Fatalf("empty targets must not yield a path")
	}
	path, cost, ok := m.Pathfind(geom.C(1, 0), []geom.Coord{geom.C(9, 9), geom.C(1, 0)}, 50)
	if !ok || cost != 0 || len(path) != 1 || path[0] != geom.C(1, 0) {
		t.Fatalf("start in targets: %v %d %v", path, cost, ok)
	}
}

func TestPathfindAcrossStartingRoom(t *testing.T) {
	m := newTestMap(0)
	from, to := geom.C(-1, 0), geom.C(5, 0)
	path, cost, ok := m.Pathfind(from, []geom.Coord{to}, math.Inf(1))
	if !ok {
		t.Fatalf("expected a path across the starting room")
	}
	if cost != 6 || len(path) != 7 {
		t.Fatalf("got cost %d len %d", cost, len(path))
	}
	if path[0] != from || path[len(path)-1] != to {
		t.Fatalf("endpoints: %v", path)
	}
	if _, _, ok := m.Pathfind(from, []geom.Coord{to}, 1); ok {
		t.Fatalf("threshold should keep the search from reaching the target")
	}
}

func TestPathfindDiagonalCost(t *testing.T) {
	m := newTestMap(0)
	// Inside the starting room a 2x2 diagonal costs 28 tenths.
	path, cost, ok := m.Pathfind(geom.C(0, -1), []geom.Coord{geom.C(2, 1)}, math.Inf(1))
	if !ok {
		t.Fatalf("expected a path")
	}
	if cost != 3 || len(path) != 3 {
		t.Fatalf("diagonal: cost %d len %d (%v)", cost, len(path), path)
	}
}

type fixedItems struct{}

func (fixedItems) Generate(at geom.Vec2) store.Loot { return store.Loot{ID: "smg", Kind: "gun"} }

func TestChestsInAreLive(t *testing.T) {
	m := newTestMap(2)
	var area geom.Rect
	var found *Chest
	for x := 0; x < 6 && found == nil; x++ {
		area = geom.RectBetween(geom.V(float64(x*50-25), -25), geom.V(float64(x*50+25), 25))
		if cs := m.ChestsIn(area); len(cs) > 0 {
			found = cs[0]
		}
	}
	if found == nil {
		t.Fatalf("no chest in the first six chunks")
	}
	found.Open(fixedItems{})
	again := m.ChestsIn(area)
	if !again[0].IsOpen() || again[0] != found {
		t.Fatalf("chest state did not persist")
	}
	if c, ok := m.ChestAt(found.Position()); !ok || c != found {
		t.Fatalf("ChestAt did not find the chest")
	}
	if _, ok := m.ChestAt(found.Position().Add(geom.V(0.3, 0))); ok {
		t.Fatalf("ChestAt outside bounds")
	}
}

func TestRegionQueriesFilterByRect(t *testing.T) {
	m := newTestMap(8)
	area := geom.RectBetween(geom.V(-30, -30), geom.V(30, 30))
	for _, p := range m.DecorationsIn(area) {
		if !area.Contains(p) {
			t.Fatalf("decoration %v outside query", p)
		}
	}
	all := 0
	for _, k := range []geom.Coord{geom.C(-1, -1), geom.C(0, -1), geom.C(1, -1), geom.C(-1, 0), geom.C(0, 0), geom.C(1, 0), geom.C(-1, 1), geom.C(0, 1), geom.C(1, 1)} {
		for _, p := range m.Chunk(k).Spawners() {
			if area.Contains(p) {
				all++
			}
		}
	}
	if got := len(m.SpawnersIn(area)); got != all {
		t.Fatalf("SpawnersIn: got %d want %d", got, all)
	}
}

func TestRenderASCII(t *testing.T) {
	m := newTestMap(0)
	out := m.RenderASCII(geom.C(-3, -3), geom.C(6, 3))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("rows: got %d want 7", len(lines))
	}
	for _, l := range lines {
		if len(l) != 10 {
			t.Fatalf("row width: got %d want 10", len(l))
		}
	}
	// (4,0) holds the starting spawner; row index 3 is y=0.
	if lines[3][7] != 'S' {
		t.Fatalf("expected spawner glyph, got %q", lines[3])
	}
}
