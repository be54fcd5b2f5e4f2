package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"deepdelve.ai/internal/protocol"
	"deepdelve.ai/internal/sim/encoding"
	"deepdelve.ai/internal/sim/world"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

func startServer(t *testing.T, cfg Config) (*websocket.Conn, *world.Runner) {
	t.Helper()
	r := world.NewRunner(world.NewMap(world.DefaultMapConfig(0)))
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = r.Run(ctx) }()
	t.Cleanup(cancel)

	srv := httptest.NewServer(NewServer(r, 0, cfg).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, r
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv[T any](t *testing.T, conn *websocket.Conn) T {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	return out
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"})
	w := recv[protocol.WelcomeMsg](t, conn)
	if w.Type != protocol.TypeWelcome || w.SessionID == "" {
		t.Fatalf("unexpected welcome: %+v", w)
	}
	return w
}

func TestServer_HandshakeAndTile(t *testing.T) {
	conn, _ := startServer(t, Config{MaxPathfindThreshold: 100})
	w := hello(t, conn)
	if w.WorldParams.ChunkSize != tile.Size || w.WorldParams.Seed != 0 {
		t.Fatalf("world params: %+v", w.WorldParams)
	}

	// Seed 0 puts the starting room at world (-1..5, -2..2).
	send(t, conn, protocol.TileMsg{Type: protocol.TypeTile, ProtocolVersion: protocol.Version, ID: "t1", Pos: [2]int{0, 0}})
	res := recv[protocol.TileResultMsg](t, conn)
	if res.Type != protocol.TypeTileResult || res.ID != "t1" || res.Tile != "FLOOR" {
		t.Fatalf("unexpected tile result: %+v", res)
	}
}

func TestServer_SetTileThenRead(t *testing.T) {
	conn, _ := startServer(t, Config{})
	hello(t, conn)

	send(t, conn, protocol.SetTileMsg{Type: protocol.TypeSetTile, ProtocolVersion: protocol.Version, ID: "s1", Pos: [2]int{0, 0}, Tile: "WALL"})
	res := recv[protocol.TileResultMsg](t, conn)
	if res.Tile != "WALL" || !res.Changed {
		t.Fatalf("unexpected set result: %+v", res)
	}
	send(t, conn, protocol.TileMsg{Type: protocol.TypeTile, ProtocolVersion: protocol.Version, ID: "t2", Pos: [2]int{0, 0}})
	res = recv[protocol.TileResultMsg](t, conn)
	if res.Tile != "WALL" {
		t.Fatalf("expected WALL after set, got %+v", res)
	}
}

func TestServer_PathfindClampsThreshold(t *testing.T) {
	conn, _ := startServer(t, Config{MaxPathfindThreshold: 30})
	hello(t, conn)

	send(t, conn, protocol.PathfindMsg{
		Type:            protocol.TypePathfind,
		ProtocolVersion: protocol.Version,
		ID:              "p1",
		Start:           [2]int{0, 0},
		Targets:         [][2]int{{4, 0}},
		Threshold:       1e9,
	})
	res := recv[protocol.PathResultMsg](t, conn)
	if res.Threshold != 30 {
		t.Fatalf("threshold=%v want 30", res.Threshold)
	}
	if !res.Found || res.Cost != 4 || len(res.Path) != 5 {
		t.Fatalf("unexpected path: %+v", res)
	}
	if res.Path[0] != [2]int{0, 0} || res.Path[4] != [2]int{4, 0} {
		t.Fatalf("path endpoints: %v", res.Path)
	}
}

func TestServer_ChunkData(t *testing.T) {
	conn, _ := startServer(t, Config{PrefetchRadiusChunks: 1})
	hello(t, conn)

	send(t, conn, protocol.ChunkMsg{Type: protocol.TypeChunk, ProtocolVersion: protocol.Version, ID: "c1", Chunk: [2]int{0, 0}})
	res := recv[protocol.ChunkDataMsg](t, conn)
	if res.Encoding != "RLE" || res.Width != tile.Size || len(res.Digest) != 64 {
		t.Fatalf("unexpected chunk data header: %+v", res)
	}
	tiles, err := encoding.DecodeTiles(res.Data, tile.Size*tile.Size)
	if err != nil {
		t.Fatalf("DecodeTiles: %v", err)
	}
	// Local (25,25) is world (0,0), inside the starting room.
	if tiles[25+25*tile.Size] != tile.Floor {
		t.Fatalf("expected floor at the world origin")
	}
}

func TestServer_Region(t *testing.T) {
	conn, _ := startServer(t, Config{})
	hello(t, conn)

	send(t, conn, protocol.RegionMsg{Type: protocol.TypeRegion, ProtocolVersion: protocol.Version, ID: "r1", Min: [2]float64{-25, -25}, Max: [2]float64{25, 25}})
	res := recv[protocol.RegionResultMsg](t, conn)
	if res.Type != protocol.TypeRegionRes || res.ID != "r1" {
		t.Fatalf("unexpected region result: %+v", res)
	}
	found := false
	for _, p := range res.Spawners {
		if p == [2]float64{4.5, 0.5} {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected starting room spawner in %v", res.Spawners)
	}
}

func TestServer_Errors(t *testing.T) {
	conn, _ := startServer(t, Config{})
	hello(t, conn)

	cases := []struct {
		raw  string
		code string
	}{
		{`not json`, protocol.ErrProtoBadRequest},
		{`{"type":"TILE","protocol_version":"0.1","id":"x","pos":[0,0]}`, protocol.ErrProtoBadRequest},
		{`{"type":"TILE","protocol_version":"1.0","id":"x","pos":[0]}`, protocol.ErrProtoBadRequest},
		{`{"type":"NOPE","protocol_version":"1.0","id":"x"}`, protocol.ErrProtoBadRequest},
		{`{"type":"REGION","protocol_version":"1.0","id":"x","min":[5,5],"max":[0,0]}`, protocol.ErrBadRequest},
		{`{"type":"REGION","protocol_version":"1.0","id":"x","min":[0,0],"max":[10000,1]}`, protocol.ErrBadRequest},
	}
	for _, c := range cases {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(c.raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
		e := recv[protocol.ErrorMsg](t, conn)
		if e.Type != protocol.TypeError || e.Code != c.code {
			t.Fatalf("%s: got %+v want code %s", c.raw, e, c.code)
		}
	}
}

func TestServer_RejectsNonHello(t *testing.T) {
	conn, _ := startServer(t, Config{})
	send(t, conn, protocol.TileMsg{Type: protocol.TypeTile, ProtocolVersion: protocol.Version, ID: "t", Pos: [2]int{0, 0}})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to close without HELLO")
	}
}

func TestServer_RateLimit(t *testing.T) {
	conn, _ := startServer(t, Config{QueryRateWindow: time.Hour, QueryRateMax: 2})
	hello(t, conn)

	for i := 0; i < 2; i++ {
		send(t, conn, protocol.TileMsg{Type: protocol.TypeTile, ProtocolVersion: protocol.Version, ID: "ok", Pos: [2]int{0, 0}})
		if res := recv[protocol.TileResultMsg](t, conn); res.Type != protocol.TypeTileResult {
			t.Fatalf("query %d: %+v", i, res)
		}
	}
	send(t, conn, protocol.TileMsg{Type: protocol.TypeTile, ProtocolVersion: protocol.Version, ID: "late", Pos: [2]int{0, 0}})
	e := recv[protocol.ErrorMsg](t, conn)
	if e.Type != protocol.TypeError || e.Code != protocol.ErrRateLimit || e.ID != "late" {
		t.Fatalf("expected rate limit error, got %+v", e)
	}
}

func TestServer_OpenBarrier(t *testing.T) {
	conn, _ := startServer(t, Config{})
	hello(t, conn)

	send(t, conn, protocol.ChunkMsg{Type: protocol.TypeChunk, ProtocolVersion: protocol.Version, ID: "c", Chunk: [2]int{0, 0}})
	data := recv[protocol.ChunkDataMsg](t, conn)
	tiles, err := encoding.DecodeTiles(data.Data, tile.Size*tile.Size)
	if err != nil {
		t.Fatalf("DecodeTiles: %v", err)
	}
	barrier, wall := -1, -1
	for i, v := range tiles {
		if v == tile.Barrier && barrier < 0 {
			barrier = i
		}
		if v == tile.Wall && wall < 0 {
			wall = i
		}
	}
	if barrier < 0 || wall < 0 {
		t.Fatalf("chunk 0,0 should hold a barrier and a wall")
	}
	// Chunk (0,0) starts at world (-25,-25).
	toWorld := func(i int) [2]int { return [2]int{i%tile.Size - 25, i/tile.Size - 25} }

	open := func(id string, pos [2]int) protocol.TileResultMsg {
		send(t, conn, protocol.OpenBarrierMsg{Type: protocol.TypeOpenBarrier, ProtocolVersion: protocol.Version, ID: id, Pos: pos})
		res := recv[protocol.TileResultMsg](t, conn)
		if res.Type != protocol.TypeTileResult || res.ID != id || res.Pos != pos {
			t.Fatalf("unexpected open result: %+v", res)
		}
		return res
	}
	if res := open("b1", toWorld(barrier)); !res.Changed || res.Tile != "FLOOR" {
		t.Fatalf("first open: %+v", res)
	}
	if res := open("b2", toWorld(barrier)); res.Changed || res.Tile != "FLOOR" {
		t.Fatalf("second open: %+v", res)
	}
	if res := open("b3", toWorld(wall)); res.Changed || res.Tile != "WALL" {
		t.Fatalf("open on wall: %+v", res)
	}
}

func TestServer_OpenChest(t *testing.T) {
	conn, _ := startServer(t, Config{})
	hello(t, conn)

	send(t, conn, protocol.RegionMsg{Type: protocol.TypeRegion, ProtocolVersion: protocol.Version, ID: "r", Min: [2]float64{-25, -25}, Max: [2]float64{25, 25}})
	region := recv[protocol.RegionResultMsg](t, conn)
	if len(region.Chests) == 0 {
		t.Fatalf("expected a chest near the origin")
	}
	chest := region.Chests[0]
	if chest.Open {
		t.Fatalf("fresh chest reported open")
	}

	open := func(id, player string) protocol.ChestResultMsg {
		send(t, conn, protocol.OpenChestMsg{Type: protocol.TypeOpenChest, ProtocolVersion: protocol.Version, ID: id, Pos: chest.Pos, Player: player})
		res := recv[protocol.ChestResultMsg](t, conn)
		if res.Type != protocol.TypeChestResult || res.ID != id || res.Pos != chest.Pos {
			t.Fatalf("unexpected chest result: %+v", res)
		}
		return res
	}
	first := open("o1", "p1")
	if !first.Taken || first.Claimed != 1 || first.Loot.ID == "" || first.Loot.Tier < 1 {
		t.Fatalf("first open: %+v", first)
	}
	again := open("o2", "p1")
	if again.Taken || again.Claimed != 1 || again.Loot != first.Loot {
		t.Fatalf("repeat pickup: %+v", again)
	}
	other := open("o3", "p2")
	if !other.Taken || other.Claimed != 2 || other.Loot != first.Loot {
		t.Fatalf("second player: %+v", other)
	}

	send(t, conn, protocol.RegionMsg{Type: protocol.TypeRegion, ProtocolVersion: protocol.Version, ID: "r2", Min: [2]float64{-25, -25}, Max: [2]float64{25, 25}})
	region = recv[protocol.RegionResultMsg](t, conn)
	for _, c := range region.Chests {
		if c.Pos == chest.Pos && !c.Open {
			t.Fatalf("chest still reported closed after opening")
		}
	}

	// The starting room never holds a chest.
	send(t, conn, protocol.OpenChestMsg{Type: protocol.TypeOpenChest, ProtocolVersion: protocol.Version, ID: "none", Pos: [2]float64{0.5, 0.5}, Player: "p1"})
	e := recv[protocol.ErrorMsg](t, conn)
	if e.Type != protocol.TypeError || e.Code != protocol.ErrBadRequest || e.ID != "none" {
		t.Fatalf("expected bad request, got %+v", e)
	}
}
