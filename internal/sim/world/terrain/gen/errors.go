package gen

import (
	"errors"
	"fmt"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

var (
	ErrNoPath      = errors.New("no path")
	ErrOutOfBounds = errors.New("endpoint out of bounds")
)

// CarveError reports a tunnel or entry that could not be carved. Carving
// always succeeds on a well-formed chunk, so callers treat it as fatal.
type CarveError struct {
	Chunk geom.Coord
	Kind  string
	From  geom.Coord
	To    geom.Coord
	Err   error
}

func (e *CarveError) Error() string {
	if e.Kind == kindEntry {
		return fmt.Sprintf("carve %s in chunk %v from %v: %v", e.Kind, e.Chunk, e.From, e.Err)
	}
	return fmt.Sprintf("carve %s in chunk %v from %v to %v: %v", e.Kind, e.Chunk, e.From, e.To, e.Err)
}

func (e *CarveError) Unwrap() error { return e.Err }

const (
	kindTunnel = "tunnel"
	kindEntry  = "entry"
)
