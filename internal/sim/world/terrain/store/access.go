package store

import (
	"sort"

	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/gen"
)

const recentLines = 2

type cacheLine struct {
	key   geom.Coord
	chunk *Chunk
}

// ChunkStore generates chunks on first access and keeps them for the life
// of the store. Not safe for concurrent use; the world loop goroutine owns
// it.
type ChunkStore struct {
	Seed   uint32
	Params gen.Params
	Chunks map[geom.Coord]*Chunk

	recent  [recentLines]cacheLine
	nRecent int
	hits    uint64
	misses  uint64

	log      *logrus.Entry
	observer Observer
}

func NewChunkStore(seed uint32, p gen.Params) *ChunkStore {
	return &ChunkStore{
		Seed:   seed,
		Params: p,
		Chunks: map[geom.Coord]*Chunk{},
		log:    logging.New("chunkstore"),
	}
}

func (s *ChunkStore) SetLogger(l *logrus.Entry) {
	if l != nil {
		s.log = l
	}
}

func (s *ChunkStore) SetObserver(o Observer) { s.observer = o }

// Load returns the chunk at key, generating it if needed.
func (s *ChunkStore) Load(key geom.Coord) (*Chunk, error) {
	for i := 0; i < s.nRecent; i++ {
		if s.recent[i].key == key {
			s.hits++
			if i > 0 {
				line := s.recent[i]
				copy(s.recent[1:i+1], s.recent[:i])
				s.recent[0] = line
			}
			return s.recent[0].chunk, nil
		}
	}
	s.misses++

	ch, ok := s.Chunks[key]
	if !ok {
		built, rep, err := Build(s.Seed, key, s.Params)
		if err != nil {
			s.log.WithFields(logrus.Fields{"chunk": key, "seed": s.Seed}).WithError(err).Error("chunk generation failed")
			return nil, err
		}
		ch = built
		s.Chunks[key] = ch
		s.log.WithFields(logrus.Fields{
			"chunk": key,
			"rooms": rep.Rooms,
			"ms":    rep.Duration.Milliseconds(),
		}).Debug("generated chunk")
		if s.observer != nil {
			s.observer.ChunkGenerated(rep)
		}
	}

	copy(s.recent[1:], s.recent[:recentLines-1])
	s.recent[0] = cacheLine{key: key, chunk: ch}
	if s.nRecent < recentLines {
		s.nRecent++
	}
	return ch, nil
}

// At is Load for callers that cannot handle a failure. A generation error
// means a broken invariant and panics.
func (s *ChunkStore) At(key geom.Coord) *Chunk {
	ch, err := s.Load(key)
	if err != nil {
		panic(err)
	}
	return ch
}

func (s *ChunkStore) Loaded(key geom.Coord) bool {
	_, ok := s.Chunks[key]
	return ok
}

func (s *ChunkStore) LoadedChunkKeys() []geom.Coord {
	keys := make([]geom.Coord, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Y < keys[j].Y
	})
	return keys
}

// CacheStats reports lookups served by the recent-chunk cache and those that
// fell through to the map.
func (s *ChunkStore) CacheStats() (hits, misses uint64) { return s.hits, s.misses }
