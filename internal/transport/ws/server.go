package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	"deepdelve.ai/internal/protocol"
	"deepdelve.ai/internal/sim/encoding"
	"deepdelve.ai/internal/sim/world"
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/logic/rates"
	"deepdelve.ai/internal/sim/world/terrain/store"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// maxRegionSpan bounds REGION queries per axis, in tiles.
const maxRegionSpan = 512

type Config struct {
	MaxPathfindThreshold float64
	PrefetchRadiusChunks int
	WriteTimeout         time.Duration

	// QueryRateWindow and QueryRateMax bound requests per session.
	QueryRateWindow time.Duration
	QueryRateMax    int
}

type Server struct {
	runner *world.Runner
	seed   uint32
	cfg    Config
	log    *logrus.Entry
	items  store.ItemGenerator

	upgrader websocket.Upgrader
	sessions atomic.Uint64
}

func NewServer(r *world.Runner, seed uint32, cfg Config) *Server {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Server{
		runner: r,
		seed:   seed,
		cfg:    cfg,
		log:    logging.New("ws"),
		items:  store.SeededItems{Seed: seed},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) SetLogger(l *logrus.Entry) {
	if l != nil {
		s.log = l
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID := s.handshake(conn)
		if sessionID == "" {
			return
		}
		log := s.log.WithField("session", sessionID)
		log.Info("session started")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, 16)
		writerDone := make(chan struct{})

		// Writer goroutine.
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		limit := rates.Window{Size: s.cfg.QueryRateWindow, Max: s.cfg.QueryRateMax}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var resp any
			if ok, cooldown := limit.Allow(time.Now()); ok {
				resp = s.handle(ctx, msg)
			} else {
				base, _ := protocol.DecodeBase(msg)
				resp = protocol.NewError(base.ID, protocol.ErrRateLimit, fmt.Sprintf("retry in %dms", cooldown.Milliseconds()))
			}
			b, err := json.Marshal(resp)
			if err != nil {
				log.WithError(err).Error("marshal response")
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}

		cancel()
		<-writerDone
		log.Info("session ended")
	}
}

func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := protocol.Decode(protocol.TypeHello, msg, &hello); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad HELLO"), time.Now().Add(time.Second))
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}
	if strings.TrimSpace(hello.ClientName) == "" {
		hello.ClientName = "client"
	}

	id := fmt.Sprintf("S%d", s.sessions.Add(1))
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		WorldParams: protocol.WorldParams{
			Seed:                 s.seed,
			ChunkSize:            tile.Size,
			Tiles:                []string{tile.Wall.String(), tile.Floor.String(), tile.Barrier.String()},
			MaxPathfindThreshold: s.cfg.MaxPathfindThreshold,
		},
	}
	if err := s.writeJSON(conn, welcome); err != nil {
		return ""
	}
	s.log.WithFields(logrus.Fields{"session": id, "client": hello.ClientName}).Debug("handshake complete")
	return id
}

// handle validates and answers one request. It always returns a message.
func (s *Server) handle(ctx context.Context, msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, "bad protocol_version")
	}

	var resp any
	switch base.Type {
	case protocol.TypeTile:
		var m protocol.TileMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.tile(ctx, m)
	case protocol.TypeSetTile:
		var m protocol.SetTileMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.setTile(ctx, m)
	case protocol.TypeRegion:
		var m protocol.RegionMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.region(ctx, m)
	case protocol.TypePathfind:
		var m protocol.PathfindMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.pathfind(ctx, m)
	case protocol.TypeChunk:
		var m protocol.ChunkMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.chunk(ctx, m)
	case protocol.TypeOpenBarrier:
		var m protocol.OpenBarrierMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.openBarrier(ctx, m)
	case protocol.TypeOpenChest:
		var m protocol.OpenChestMsg
		if err := protocol.Decode(base.Type, msg, &m); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		resp, err = s.openChest(ctx, m)
	default:
		return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, fmt.Sprintf("unsupported type %q", base.Type))
	}
	if err != nil {
		var bad badRequest
		if errors.As(err, &bad) {
			return protocol.NewError(base.ID, protocol.ErrBadRequest, bad.Error())
		}
		s.log.WithError(err).WithField("type", base.Type).Error("query failed")
		return protocol.NewError(base.ID, protocol.ErrInternal, err.Error())
	}
	return resp
}

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func point(p [2]int) geom.Coord { return geom.C(p[0], p[1]) }

func pair(c geom.Coord) [2]int { return [2]int{c.X, c.Y} }

func vpair(v geom.Vec2) [2]float64 { return [2]float64{v.X, v.Y} }

// prefetchAround asks the world loop to warm the chunks near p.
func (s *Server) prefetchAround(p geom.Vec2) {
	if s.cfg.PrefetchRadiusChunks <= 0 {
		return
	}
	half := float64(s.cfg.PrefetchRadiusChunks * tile.Size)
	_ = s.runner.Prefetch(geom.Focused(p, geom.V(2*half, 2*half)))
}

func (s *Server) tile(ctx context.Context, m protocol.TileMsg) (protocol.TileResultMsg, error) {
	pos := point(m.Pos)
	var t tile.Tile
	if err := s.runner.Do(ctx, func(w *world.Map) { t = w.At(pos) }); err != nil {
		return protocol.TileResultMsg{}, err
	}
	s.prefetchAround(pos.Center())
	return protocol.TileResultMsg{
		Type:            protocol.TypeTileResult,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Pos:             m.Pos,
		Tile:            t.String(),
	}, nil
}

func (s *Server) setTile(ctx context.Context, m protocol.SetTileMsg) (protocol.TileResultMsg, error) {
	want, err := tile.Parse(m.Tile)
	if err != nil {
		return protocol.TileResultMsg{}, badRequest{msg: err.Error()}
	}
	pos := point(m.Pos)
	var changed bool
	if err := s.runner.Do(ctx, func(w *world.Map) {
		changed = w.At(pos) != want
		w.Set(pos, want)
	}); err != nil {
		return protocol.TileResultMsg{}, err
	}
	return protocol.TileResultMsg{
		Type:            protocol.TypeTileResult,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Pos:             m.Pos,
		Tile:            want.String(),
		Changed:         changed,
	}, nil
}

func (s *Server) openBarrier(ctx context.Context, m protocol.OpenBarrierMsg) (protocol.TileResultMsg, error) {
	pos := point(m.Pos)
	var (
		removed bool
		t       tile.Tile
	)
	if err := s.runner.Do(ctx, func(w *world.Map) {
		removed = w.RemoveBarrier(pos)
		t = w.At(pos)
	}); err != nil {
		return protocol.TileResultMsg{}, err
	}
	return protocol.TileResultMsg{
		Type:            protocol.TypeTileResult,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Pos:             m.Pos,
		Tile:            t.String(),
		Changed:         removed,
	}, nil
}

func (s *Server) openChest(ctx context.Context, m protocol.OpenChestMsg) (protocol.ChestResultMsg, error) {
	at := geom.V(m.Pos[0], m.Pos[1])
	var (
		found   bool
		pos     geom.Vec2
		loot    store.Loot
		taken   bool
		claimed int
	)
	if err := s.runner.Do(ctx, func(w *world.Map) {
		c, ok := w.ChestAt(at)
		if !ok {
			return
		}
		found = true
		pos = c.Position()
		c.Open(s.items)
		if loot, taken = c.Pickup(m.Player); !taken {
			loot, _ = c.Loot()
		}
		claimed = c.Claimed()
	}); err != nil {
		return protocol.ChestResultMsg{}, err
	}
	if !found {
		return protocol.ChestResultMsg{}, badRequest{msg: fmt.Sprintf("no chest at (%g, %g)", at.X, at.Y)}
	}
	s.log.WithFields(logrus.Fields{"player": m.Player, "loot": loot.ID, "taken": taken}).Debug("chest opened")
	return protocol.ChestResultMsg{
		Type:            protocol.TypeChestResult,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Pos:             vpair(pos),
		Loot:            protocol.LootRef{ID: loot.ID, Kind: loot.Kind, Tier: loot.Tier},
		Taken:           taken,
		Claimed:         claimed,
	}, nil
}

func (s *Server) region(ctx context.Context, m protocol.RegionMsg) (protocol.RegionResultMsg, error) {
	lo := geom.V(m.Min[0], m.Min[1])
	hi := geom.V(m.Max[0], m.Max[1])
	if hi.X < lo.X || hi.Y < lo.Y {
		return protocol.RegionResultMsg{}, badRequest{msg: "max must not be below min"}
	}
	if hi.X-lo.X > maxRegionSpan || hi.Y-lo.Y > maxRegionSpan {
		return protocol.RegionResultMsg{}, badRequest{msg: fmt.Sprintf("region wider than %d tiles", maxRegionSpan)}
	}
	rect := geom.RectBetween(lo, hi)

	out := protocol.RegionResultMsg{
		Type:            protocol.TypeRegionRes,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Spawners:        [][2]float64{},
		Chests:          []protocol.ChestRef{},
		Decorations:     [][2]float64{},
	}
	err := s.runner.Do(ctx, func(w *world.Map) {
		for _, p := range w.SpawnersIn(rect) {
			out.Spawners = append(out.Spawners, vpair(p))
		}
		for _, c := range w.ChestsIn(rect) {
			out.Chests = append(out.Chests, protocol.ChestRef{Pos: vpair(c.Position()), Open: c.IsOpen()})
		}
		for _, p := range w.DecorationsIn(rect) {
			out.Decorations = append(out.Decorations, vpair(p))
		}
	})
	if err != nil {
		return protocol.RegionResultMsg{}, err
	}
	s.prefetchAround(rect.Center())
	return out, nil
}

func (s *Server) clampThreshold(v float64) float64 {
	if s.cfg.MaxPathfindThreshold > 0 && v > s.cfg.MaxPathfindThreshold {
		return s.cfg.MaxPathfindThreshold
	}
	return v
}

func (s *Server) pathfind(ctx context.Context, m protocol.PathfindMsg) (protocol.PathResultMsg, error) {
	start := point(m.Start)
	targets := make([]geom.Coord, 0, len(m.Targets))
	for _, t := range m.Targets {
		targets = append(targets, point(t))
	}
	threshold := s.clampThreshold(m.Threshold)

	var (
		path  []geom.Coord
		cost  int
		found bool
	)
	if err := s.runner.Do(ctx, func(w *world.Map) {
		path, cost, found = w.Pathfind(start, targets, threshold)
	}); err != nil {
		return protocol.PathResultMsg{}, err
	}

	out := protocol.PathResultMsg{
		Type:            protocol.TypePathResult,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Found:           found,
		Path:            [][2]int{},
		Threshold:       threshold,
	}
	if found {
		for _, c := range path {
			out.Path = append(out.Path, pair(c))
		}
		out.Cost = cost
	}
	s.prefetchAround(start.Center())
	return out, nil
}

func (s *Server) chunk(ctx context.Context, m protocol.ChunkMsg) (protocol.ChunkDataMsg, error) {
	key := point(m.Chunk)
	var (
		tiles  []tile.Tile
		digest string
	)
	if err := s.runner.Do(ctx, func(w *world.Map) {
		ch := w.Chunk(key)
		tiles = ch.Tiles()
		digest = ch.DigestHex()
	}); err != nil {
		return protocol.ChunkDataMsg{}, err
	}
	s.prefetchAround(tile.ChunkStart(key).Start().AddN(tile.Size / 2))
	return protocol.ChunkDataMsg{
		Type:            protocol.TypeChunkData,
		ProtocolVersion: protocol.Version,
		ID:              m.ID,
		Chunk:           m.Chunk,
		Digest:          digest,
		Width:           tile.Size,
		Encoding:        "RLE",
		Data:            encoding.EncodeTiles(tiles),
	}, nil
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
