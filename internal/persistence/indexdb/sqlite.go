package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"deepdelve.ai/internal/sim/tuning"
	"deepdelve.ai/internal/sim/world/terrain/store"
)

var ErrClosed = errors.New("index closed")

// SQLiteIndex records per-chunk generation statistics. Writes are queued to a
// single writer goroutine and dropped when the queue is full.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropChunk atomic.Uint64
	dropSync  atomic.Uint64
}

type reqKind int

const (
	reqChunk reqKind = iota + 1
	reqSync
)

type req struct {
	kind reqKind

	chunk chunkRow
	done  chan struct{}
}

type chunkRow struct {
	Seed        uint32
	CX          int
	CY          int
	Digest      string
	Rooms       int
	Tunnels     int
	Entries     int
	Barriers    int
	Floor       int
	Spawners    int
	Chests      int
	Decorations int
	GenMicros   int64
	RecordedAt  string
}

// Stats reports queue pressure on the writer.
type Stats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropChunkTotal uint64 `json:"drop_chunk_total"`
	DropSyncTotal  uint64 `json:"drop_sync_total"`
}

// Summary aggregates the recorded chunks of one seed.
type Summary struct {
	Seed        uint32  `json:"seed"`
	Chunks      int     `json:"chunks"`
	Rooms       int     `json:"rooms"`
	Barriers    int     `json:"barriers"`
	Floor       int     `json:"floor"`
	Spawners    int     `json:"spawners"`
	Chests      int     `json:"chests"`
	Decorations int     `json:"decorations"`
	AvgMicros   float64 `json:"avg_micros"`
	MaxMicros   int64   `json:"max_micros"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS configs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			seed INTEGER NOT NULL,
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			digest TEXT NOT NULL,
			rooms INTEGER NOT NULL,
			tunnels INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			barriers INTEGER NOT NULL,
			floor INTEGER NOT NULL,
			spawners INTEGER NOT NULL,
			chests INTEGER NOT NULL,
			decorations INTEGER NOT NULL,
			gen_micros INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (seed, cx, cy)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_digest ON chunks(digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordChunk queues one generation report.
func (s *SQLiteIndex) RecordChunk(r store.Report) {
	if s == nil || s.closed.Load() {
		return
	}
	row := chunkRow{
		Seed:        r.Seed,
		CX:          r.Chunk.X,
		CY:          r.Chunk.Y,
		Digest:      r.Digest,
		Rooms:       r.Rooms,
		Tunnels:     r.Tunnels,
		Entries:     r.Entries,
		Barriers:    r.Barriers,
		Floor:       r.Floor,
		Spawners:    r.Spawners,
		Chests:      r.Chests,
		Decorations: r.Decorations,
		GenMicros:   r.Duration.Microseconds(),
		RecordedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqChunk, chunk: row}:
	default:
		// The genlog stays the source of truth.
		s.dropChunk.Add(1)
	}
}

// ChunkGenerated lets the index observe a chunk store directly.
func (s *SQLiteIndex) ChunkGenerated(r store.Report) { s.RecordChunk(r) }

// Sync blocks until every write queued before it is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return ErrClosed
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqSync, done: done}:
	default:
		s.dropSync.Add(1)
		return fmt.Errorf("index queue full")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropChunkTotal: s.dropChunk.Load(),
		DropSyncTotal:  s.dropSync.Load(),
	}
}

// UpsertTuning stores the tuning in effect so recorded chunks can be tied
// back to the parameters that produced them.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	digest := hex.EncodeToString(sum[:])
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('protocol_version',?)`, tune.ProtocolVersion); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO configs(name,digest,json,updated_at) VALUES(?,?,?,?)`, "tuning", digest, string(b), now); err != nil {
		return err
	}
	return tx.Commit()
}

// Summary reads back the aggregate for seed. Call Sync first to include
// queued writes.
func (s *SQLiteIndex) Summary(ctx context.Context, seed uint32) (Summary, error) {
	out := Summary{Seed: seed}
	if s == nil {
		return out, ErrClosed
	}
	row := s.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(rooms),0),
			COALESCE(SUM(barriers),0),
			COALESCE(SUM(floor),0),
			COALESCE(SUM(spawners),0),
			COALESCE(SUM(chests),0),
			COALESCE(SUM(decorations),0),
			COALESCE(AVG(gen_micros),0),
			COALESCE(MAX(gen_micros),0)
		FROM chunks WHERE seed=?`, int64(seed))
	if err := row.Scan(
		&out.Chunks,
		&out.Rooms,
		&out.Barriers,
		&out.Floor,
		&out.Spawners,
		&out.Chests,
		&out.Decorations,
		&out.AvgMicros,
		&out.MaxMicros,
	); err != nil {
		return out, err
	}
	return out, nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertChunk, _ := s.db.Prepare(`INSERT OR REPLACE INTO chunks(seed,cx,cy,digest,rooms,tunnels,entries,barriers,floor,spawners,chests,decorations,gen_micros,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertChunk != nil {
			_ = insertChunk.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		switch r.kind {
		case reqSync:
			commit()
			close(r.done)
			continue

		case reqChunk:
			begin()
			if tx == nil || insertChunk == nil {
				continue
			}
			c := r.chunk
			if _, err := tx.Stmt(insertChunk).Exec(
				int64(c.Seed),
				c.CX,
				c.CY,
				c.Digest,
				c.Rooms,
				c.Tunnels,
				c.Entries,
				c.Barriers,
				c.Floor,
				c.Spawners,
				c.Chests,
				c.Decorations,
				c.GenMicros,
				c.RecordedAt,
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		flushIfNeeded()
	}

	commit()
}
