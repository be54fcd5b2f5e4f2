package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	"deepdelve.ai/internal/protocol"
	"deepdelve.ai/internal/sim/encoding"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

func main() {
	var (
		url       = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name      = flag.String("name", "wsclient", "client name")
		steps     = flag.Int("steps", 10, "queries to send before exiting (0 = until interrupted)")
		radius    = flag.Int("radius", 2, "chunk radius to sample around the origin")
		threshold = flag.Float64("threshold", 200, "pathfind threshold")
		draw      = flag.Bool("draw", false, "print each fetched chunk")
	)
	flag.Parse()

	logging.Init()
	logger := logging.New("wsclient")

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.WithError(err).Fatal("dial")
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.WithError(err).Fatal("send HELLO")
	}
	var w protocol.WelcomeMsg
	if err := readJSON(conn, &w); err != nil {
		logger.WithError(err).Fatal("read WELCOME")
	}
	logger.WithFields(logrus.Fields{"session": w.SessionID, "seed": w.WorldParams.Seed}).Info("WELCOME")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	span := 2*(*radius) + 1
	for i := 0; *steps == 0 || i < *steps; i++ {
		select {
		case <-stop:
			return
		default:
		}

		cx, cy := r.Intn(span)-*radius, r.Intn(span)-*radius
		chunk := protocol.ChunkMsg{
			Type:            protocol.TypeChunk,
			ProtocolVersion: protocol.Version,
			ID:              fmt.Sprintf("C%d", i),
			Chunk:           [2]int{cx, cy},
		}
		if err := conn.WriteJSON(chunk); err != nil {
			logger.WithError(err).Fatal("send CHUNK")
		}
		var data protocol.ChunkDataMsg
		if err := readReply(conn, &data); err != nil {
			logger.WithError(err).Error("CHUNK failed")
			continue
		}
		tiles, err := encoding.DecodeTiles(data.Data, data.Width*data.Width)
		if err != nil {
			logger.WithError(err).Error("decode chunk")
			continue
		}
		target, ok := pickFloor(r, tiles, data.Width, cx, cy)
		logger.WithFields(logrus.Fields{"chunk": data.Chunk, "digest": data.Digest, "floor": countFloor(tiles)}).Info("CHUNK_DATA")
		if *draw {
			fmt.Println(render(tiles, data.Width))
		}
		if !ok {
			continue
		}

		pf := protocol.PathfindMsg{
			Type:            protocol.TypePathfind,
			ProtocolVersion: protocol.Version,
			ID:              fmt.Sprintf("P%d", i),
			Start:           [2]int{0, 0},
			Targets:         [][2]int{target},
			Threshold:       *threshold,
		}
		if err := conn.WriteJSON(pf); err != nil {
			logger.WithError(err).Fatal("send PATHFIND")
		}
		var path protocol.PathResultMsg
		if err := readReply(conn, &path); err != nil {
			logger.WithError(err).Error("PATHFIND failed")
			continue
		}
		logger.WithFields(logrus.Fields{"target": target, "found": path.Found, "cost": path.Cost, "len": len(path.Path), "threshold": path.Threshold}).Info("PATH_RESULT")
	}
}

func readJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(msg, v)
}

// readReply reads one message and turns an ERROR reply into an error.
func readReply(conn *websocket.Conn, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return err
	}
	if base.Type == protocol.TypeError {
		var e protocol.ErrorMsg
		if err := json.Unmarshal(msg, &e); err != nil {
			return err
		}
		return fmt.Errorf("%s: %s", e.Code, e.Message)
	}
	return json.Unmarshal(msg, v)
}

// pickFloor returns the world coordinate of a random floor tile.
func pickFloor(r *rand.Rand, tiles []tile.Tile, width, cx, cy int) ([2]int, bool) {
	var floors []int
	for i, t := range tiles {
		if t == tile.Floor {
			floors = append(floors, i)
		}
	}
	if len(floors) == 0 {
		return [2]int{}, false
	}
	i := floors[r.Intn(len(floors))]
	x := cx*width - width/2 + i%width
	y := cy*width - width/2 + i/width
	return [2]int{x, y}, true
}

func countFloor(tiles []tile.Tile) int {
	n := 0
	for _, t := range tiles {
		if t == tile.Floor {
			n++
		}
	}
	return n
}

// render draws rows top (highest y) first.
func render(tiles []tile.Tile, width int) string {
	var b strings.Builder
	for y := width - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			b.WriteByte(tiles[x+y*width].Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
