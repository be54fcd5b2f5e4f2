package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	"deepdelve.ai/internal/persistence/indexdb"
	persistlog "deepdelve.ai/internal/persistence/log"
	"deepdelve.ai/internal/sim/tuning"
	"deepdelve.ai/internal/sim/world"
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/store"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// seedscan generates a square of chunks for one seed and reports what came
// out: per-chunk stats go to the index and the generation log, a summary to
// stdout.
func main() {
	var (
		seed       = flag.Uint("seed", 0, "world seed")
		radius     = flag.Int("radius", 2, "chunk radius around the origin")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: built-in defaults)")
		dataDir    = flag.String("data", "", "write the index and generation log here (empty to skip)")
		ascii      = flag.Bool("ascii", false, "print the scanned area")
	)
	flag.Parse()

	logging.Init()
	logger := logging.New("seedscan").WithField("seed", *seed)

	tune, _, err := tuning.LoadOrDefault(*tuningPath)
	if err != nil {
		logger.WithError(err).Fatal("load tuning")
	}

	cfg := world.MapConfig{Seed: uint32(*seed), Gen: tune.WorldGen.Params()}
	m := world.NewMap(cfg)

	var (
		observers store.Observers
		idx       *indexdb.SQLiteIndex
	)
	if *dataDir != "" {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", fmt.Sprintf("seed_%d.sqlite", *seed)))
		if err != nil {
			logger.WithError(err).Fatal("open index")
		}
		defer idx.Close()
		genLog := persistlog.NewGenLogger(filepath.Join(*dataDir, fmt.Sprintf("seed_%d", *seed)))
		defer genLog.Close()
		observers = append(observers, idx, genLog)
	}
	var reports []store.Report
	observers = append(observers, store.ObserverFunc(func(r store.Report) { reports = append(reports, r) }))
	m.Store().SetObserver(observers)

	start := time.Now()
	failed := 0
	for _, k := range geom.Between(geom.C(-*radius, -*radius), geom.C(*radius, *radius)) {
		if _, err := m.Store().Load(k); err != nil {
			failed++
			logger.WithError(err).WithField("chunk", k).Error("generation failed")
		}
	}
	elapsed := time.Since(start)

	logger.WithFields(logrus.Fields{
		"chunks":  len(reports),
		"failed":  failed,
		"elapsed": elapsed.String(),
	}).Info("scan complete")

	if idx != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := idx.Sync(ctx); err != nil {
			logger.WithError(err).Warn("index sync")
		} else if sum, err := idx.Summary(ctx, uint32(*seed)); err != nil {
			logger.WithError(err).Warn("index summary")
		} else {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(sum)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summarize(uint32(*seed), reports))
	}

	if *ascii && failed == 0 {
		lo := tile.ChunkStart(geom.C(-*radius, -*radius))
		hi := tile.ChunkStart(geom.C(*radius, *radius)).AddN(tile.Size - 1)
		fmt.Println(m.RenderASCII(lo, hi))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func summarize(seed uint32, reports []store.Report) indexdb.Summary {
	sum := indexdb.Summary{Seed: seed, Chunks: len(reports)}
	var total time.Duration
	for _, r := range reports {
		sum.Rooms += r.Rooms
		sum.Barriers += r.Barriers
		sum.Floor += r.Floor
		sum.Spawners += r.Spawners
		sum.Chests += r.Chests
		sum.Decorations += r.Decorations
		total += r.Duration
		if us := r.Duration.Microseconds(); us > sum.MaxMicros {
			sum.MaxMicros = us
		}
	}
	if len(reports) > 0 {
		sum.AvgMicros = float64(total.Microseconds()) / float64(len(reports))
	}
	return sum
}
