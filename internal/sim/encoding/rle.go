package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"deepdelve.ai/internal/sim/world/terrain/tile"
)

// EncodeTiles encodes tiles as base64 of (tile, run_len) uvarint pairs.
func EncodeTiles(tiles []tile.Tile) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(tiles); {
		t := tiles[i]
		run := 1
		for j := i + 1; j < len(tiles) && tiles[j] == t; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(t))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeTiles reverses EncodeTiles. want bounds the output length so a
// hostile payload cannot balloon; pass 0 for no bound.
func DecodeTiles(b64 string, want int) ([]tile.Tile, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []tile.Tile
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > uint64(tile.Barrier) {
			return nil, fmt.Errorf("unknown tile id: %d", v)
		}
		if want > 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("payload longer than %d tiles", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, tile.Tile(v))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("payload has %d tiles, want %d", len(out), want)
	}
	return out, nil
}
