package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	"deepdelve.ai/internal/sim/world/terrain/store"
)

// JSONLZstdWriter appends JSON lines to hourly zstd files named
// <prefix>-<yyyy-mm-dd-hh>.jsonl.zst under baseDir.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour || w.w == nil {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// GenEntry is one line of the generation log.
type GenEntry struct {
	Time       time.Time `json:"time"`
	Seed       uint32    `json:"seed"`
	ChunkX     int       `json:"cx"`
	ChunkY     int       `json:"cy"`
	Digest     string    `json:"digest"`
	DurationUs int64     `json:"duration_us"`
	Stats      GenCounts `json:"stats"`
}

type GenCounts struct {
	Rooms       int `json:"rooms"`
	Tunnels     int `json:"tunnels"`
	Entries     int `json:"entries"`
	Barriers    int `json:"barriers"`
	Floor       int `json:"floor"`
	Spawners    int `json:"spawners"`
	Chests      int `json:"chests"`
	Decorations int `json:"decorations"`
}

func EntryFromReport(at time.Time, r store.Report) GenEntry {
	return GenEntry{
		Time:       at.UTC(),
		Seed:       r.Seed,
		ChunkX:     r.Chunk.X,
		ChunkY:     r.Chunk.Y,
		Digest:     r.Digest,
		DurationUs: r.Duration.Microseconds(),
		Stats: GenCounts{
			Rooms:       r.Rooms,
			Tunnels:     r.Tunnels,
			Entries:     r.Entries,
			Barriers:    r.Barriers,
			Floor:       r.Floor,
			Spawners:    r.Spawners,
			Chests:      r.Chests,
			Decorations: r.Decorations,
		},
	}
}

// GenLogger writes one compressed JSONL entry per generated chunk. It is a
// store.Observer; write failures are logged and never reach the generator.
type GenLogger struct {
	w   *JSONLZstdWriter
	log *logrus.Entry
}

func NewGenLogger(dataDir string) *GenLogger {
	return &GenLogger{
		w:   NewJSONLZstdWriter(filepath.Join(dataDir, "genlog"), "chunks"),
		log: logging.New("genlog"),
	}
}

func (l *GenLogger) WriteChunk(e GenEntry) error { return l.w.Write(e) }

func (l *GenLogger) ChunkGenerated(r store.Report) {
	if err := l.WriteChunk(EntryFromReport(l.w.now(), r)); err != nil {
		l.log.WithError(err).WithField("chunk", r.Chunk).Warn("genlog write failed")
	}
}

func (l *GenLogger) Close() error { return l.w.Close() }
