package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Seed      uint32   `json:"seed"`
	ChunkSize int      `json:"chunk_size"`
	Tiles     []string `json:"tiles"`
	// MaxPathfindThreshold is the clamp applied to PATHFIND thresholds.
	MaxPathfindThreshold float64 `json:"max_pathfind_threshold"`
}

type TileMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Pos             [2]int `json:"pos"`
}

type SetTileMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Pos             [2]int `json:"pos"`
	Tile            string `json:"tile"`
}

type TileResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Pos             [2]int `json:"pos"`
	Tile            string `json:"tile"`
	Changed         bool   `json:"changed,omitempty"`
}

type RegionMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ID              string     `json:"id"`
	Min             [2]float64 `json:"min"`
	Max             [2]float64 `json:"max"`
}

type ChestRef struct {
	Pos  [2]float64 `json:"pos"`
	Open bool       `json:"open"`
}

type RegionResultMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	ID              string       `json:"id"`
	Spawners        [][2]float64 `json:"spawners"`
	Chests          []ChestRef   `json:"chests"`
	Decorations     [][2]float64 `json:"decorations"`
}

type PathfindMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ID              string   `json:"id"`
	Start           [2]int   `json:"start"`
	Targets         [][2]int `json:"targets"`
	Threshold       float64  `json:"threshold"`
}

type PathResultMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ID              string   `json:"id"`
	Found           bool     `json:"found"`
	Path            [][2]int `json:"path"`
	Cost            int      `json:"cost"`
	// Threshold is the value actually searched with after clamping.
	Threshold float64 `json:"threshold"`
}

type ChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Chunk           [2]int `json:"chunk"`
}

type ChunkDataMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Chunk           [2]int `json:"chunk"`
	Digest          string `json:"digest"`
	Width           int    `json:"width"`
	Encoding        string `json:"encoding"`
	Data            string `json:"data"`
}

// OPEN_BARRIER turns a barrier into floor. The reply is a TILE_RESULT whose
// Changed flag says whether a barrier was there.
type OpenBarrierMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Pos             [2]int `json:"pos"`
}

// OPEN_CHEST opens the chest under pos and hands its loot to player.
type OpenChestMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ID              string     `json:"id"`
	Pos             [2]float64 `json:"pos"`
	Player          string     `json:"player"`
}

type LootRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Tier int    `json:"tier"`
}

type ChestResultMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ID              string     `json:"id"`
	Pos             [2]float64 `json:"pos"`
	Loot            LootRef    `json:"loot"`
	// Taken is false when player already took this chest's loot.
	Taken   bool `json:"taken"`
	Claimed int  `json:"claimed"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(id, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		ID:              id,
		Code:            code,
		Message:         message,
	}
}
