package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello       = "HELLO"
	TypeWelcome     = "WELCOME"
	TypeTile        = "TILE"
	TypeSetTile     = "SET_TILE"
	TypeTileResult  = "TILE_RESULT"
	TypeRegion      = "REGION"
	TypeRegionRes   = "REGION_RESULT"
	TypePathfind    = "PATHFIND"
	TypePathResult  = "PATH_RESULT"
	TypeChunk       = "CHUNK"
	TypeChunkData   = "CHUNK_DATA"
	TypeOpenBarrier = "OPEN_BARRIER"
	TypeOpenChest   = "OPEN_CHEST"
	TypeChestResult = "CHEST_RESULT"
	TypeError       = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	ID              string `json:"id,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
