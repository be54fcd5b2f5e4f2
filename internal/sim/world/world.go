package world

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/tile"
)

var ErrStopped = errors.New("world: runner stopped")

type request struct {
	fn   func(*Map)
	done chan error
}

// Runner is the world loop. It owns a Map and serialises every access to it
// on one goroutine. While idle it generates prefetched chunks one at a time.
type Runner struct {
	m   *Map
	log *logrus.Entry

	reqs     chan request
	prefetch chan geom.Rect
	stop     chan struct{}
	stopOnce sync.Once

	// Accessed only from the loop goroutine.
	pending []geom.Coord
	queued  map[geom.Coord]bool
}

func NewRunner(m *Map) *Runner {
	return &Runner{
		m:        m,
		log:      logging.New("world"),
		reqs:     make(chan request, 64),
		prefetch: make(chan geom.Rect, 16),
		stop:     make(chan struct{}),
		queued:   map[geom.Coord]bool{},
	}
}

func (r *Runner) SetLogger(l *logrus.Entry) {
	if l != nil {
		r.log = l
	}
}

func (r *Runner) Run(ctx context.Context) error {
	for {
		if len(r.pending) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.stop:
				return nil
			case req := <-r.reqs:
				r.serve(req)
			case rect := <-r.prefetch:
				r.enqueue(rect)
			default:
				r.generateNext()
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return nil
		case req := <-r.reqs:
			r.serve(req)
		case rect := <-r.prefetch:
			r.enqueue(rect)
		}
	}
}

func (r *Runner) Stop() { r.stopOnce.Do(func() { close(r.stop) }) }

// Do runs fn on the loop goroutine and waits for it. A panic inside fn
// (a chunk that failed to generate) is returned as an error.
func (r *Runner) Do(ctx context.Context, fn func(*Map)) error {
	done := make(chan error, 1)
	select {
	case r.reqs <- request{fn: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stop:
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stop:
		return ErrStopped
	}
}

// Prefetch asks the loop to generate every chunk overlapping rect when it
// has nothing else to do. It never blocks; false means the queue is full.
func (r *Runner) Prefetch(rect geom.Rect) bool {
	select {
	case r.prefetch <- rect:
		return true
	default:
		return false
	}
}

func (r *Runner) serve(req request) {
	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				if e, ok := p.(error); ok {
					err = fmt.Errorf("world: request failed: %w", e)
				} else {
					err = fmt.Errorf("world: request failed: %v", p)
				}
				r.log.WithField("panic", p).Error("world request panicked")
			}
		}()
		req.fn(r.m)
	}()
	req.done <- err
}

func (r *Runner) enqueue(rect geom.Rect) {
	lo, _ := tile.Split(rect.Min().Coord())
	hi, _ := tile.Split(rect.Max().Coord())
	for _, k := range geom.Between(lo, hi) {
		if r.queued[k] || r.m.chunks.Loaded(k) {
			continue
		}
		r.queued[k] = true
		r.pending = append(r.pending, k)
	}
}

func (r *Runner) generateNext() {
	k := r.pending[0]
	r.pending = r.pending[1:]
	delete(r.queued, k)
	if r.m.chunks.Loaded(k) {
		return
	}
	if _, err := r.m.chunks.Load(k); err != nil {
		r.log.WithError(err).WithField("chunk", k).Error("prefetch failed")
	}
}
