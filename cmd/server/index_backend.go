package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deepdelve.ai/internal/persistence/indexdb"
	"deepdelve.ai/internal/sim/tuning"
	"deepdelve.ai/internal/sim/world/terrain/store"
)

type runtimeIndex interface {
	store.Observer
	Close() error
	UpsertTuning(tune tuning.Tuning) error
	Stats() indexdb.Stats
}

func openRuntimeIndex(dataDir string, seed uint32, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DD_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(dataDir, "index", fmt.Sprintf("seed_%d.sqlite", seed))
		return indexdb.OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unsupported DD_INDEX_BACKEND: %s", backend)
	}
}
