package store

import (
	"time"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

// Report summarises one chunk generation.
type Report struct {
	Seed        uint32        `json:"seed"`
	Chunk       geom.Coord    `json:"chunk"`
	Digest      string        `json:"digest"`
	Rooms       int           `json:"rooms"`
	Tunnels     int           `json:"tunnels"`
	Entries     int           `json:"entries"`
	Barriers    int           `json:"barriers"`
	Floor       int           `json:"floor"`
	Spawners    int           `json:"spawners"`
	Chests      int           `json:"chests"`
	Decorations int           `json:"decorations"`
	Duration    time.Duration `json:"duration_ns"`
}

// Observer is notified after each chunk is generated. It runs on the
// generating goroutine and must not block.
type Observer interface {
	ChunkGenerated(r Report)
}

// Observers fans a report out in order.
type Observers []Observer

func (o Observers) ChunkGenerated(r Report) {
	for _, ob := range o {
		if ob != nil {
			ob.ChunkGenerated(r)
		}
	}
}

type ObserverFunc func(Report)

func (f ObserverFunc) ChunkGenerated(r Report) { f(r) }
