package protocol

// Client roles.
const (
	RoleViewer     = "viewer"
	RoleController = "controller"
)

// Actions carried by ACT.
const (
	ActMove      = "MOVE"
	ActBreak     = "BREAK"
	ActPlace     = "PLACE"
	ActSelect    = "SELECT"
	ActSetRadius = "SET_RADIUS"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	Role            string `json:"role,omitempty"` // viewer (default) | controller
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldID         string      `json:"world_id"`
	Role            string      `json:"role"`
	WorldParams     WorldParams `json:"world_params"`
	Blocks          BlockTable  `json:"blocks"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  int    `json:"chunk_size"`
	LoadRadius int    `json:"load_radius"`
	Hysteresis int    `json:"hysteresis"`
	Seed       int64  `json:"seed"`
	Generator  string `json:"generator"`
}

type BlockTable struct {
	Digest string      `json:"digest"`
	Count  int         `json:"count"`
	Blocks []BlockInfo `json:"blocks"`
}

type BlockInfo struct {
	ID          uint16     `json:"id"`
	Name        string     `json:"name"`
	Solid       bool       `json:"solid"`
	Transparent bool       `json:"transparent,omitempty"`
	Color       [4]float32 `json:"color"`
	Texture     string     `json:"texture,omitempty"`
}

// FRAME (server -> client): chunks redrawn this tick plus evictions.
type FrameMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	Focal           [2]int       `json:"focal"`
	Player          PlayerState  `json:"player"`
	Loaded          int          `json:"loaded"`
	Quads           int          `json:"quads"`
	Chunks          []ChunkFrame `json:"chunks"`
	Evicted         [][2]int     `json:"evicted,omitempty"`
}

type PlayerState struct {
	Pos      [2]float32 `json:"pos"`
	Size     [2]float32 `json:"size"`
	Selected uint16     `json:"selected"`
}

// ChunkFrame carries the full chunk content as base64 RLE.
type ChunkFrame struct {
	CX     int    `json:"cx"`
	CY     int    `json:"cy"`
	Blocks string `json:"blocks"`
	Quads  int    `json:"quads"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	ActID           string  `json:"act_id"`
	Action          string  `json:"action"`
	X               int     `json:"x,omitempty"`
	Y               int     `json:"y,omitempty"`
	DX              float32 `json:"dx,omitempty"`
	DY              float32 `json:"dy,omitempty"`
	Slot            int     `json:"slot,omitempty"`
	Radius          int     `json:"radius,omitempty"`
}

// ACT_RESULT (server -> client)
type ActResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ActID           string `json:"act_id"`
	Tick            uint64 `json:"tick"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}
