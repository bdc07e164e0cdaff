// Package observerproto defines the JSON messages of the read-only observer
// feed: a renderer subscribes to a grid region, receives its tiles once and
// then one frame message per simulated frame.
package observerproto

// Version is the observer protocol version.
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeInput     = "INPUT"
	TypeTiles     = "TILES"
	TypeFrame     = "FRAME"
)

// Region is an integer grid box.
type Region struct {
	Min  [3]int `json:"min"`
	Size [3]int `json:"size"`
}

// Client -> Server. First message on the connection; re-sending it moves the
// region and triggers a new TILES message.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Region defaults to the whole grid.
	Region     *Region `json:"region,omitempty"`
	MaxRegions int     `json:"max_regions,omitempty"`
}

// Client -> Server. A key event forwarded to the level's controls.
type InputMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Key             string `json:"key"`
	Press           bool   `json:"press"`
	Shift           bool   `json:"shift,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string     `json:"protocol_version"`
	Level           string     `json:"level"`
	Frame           int        `json:"frame"`
	GridParams      GridParams `json:"grid_params"`
	Meshes          []string   `json:"meshes"`
}

type GridParams struct {
	Size          int     `json:"size"`
	FrameRateHz   int     `json:"frame_rate_hz"`
	TicksPerFrame int     `json:"ticks_per_frame"`
	TickSize      float64 `json:"tick_size"`
	Seed          int64   `json:"seed"`
}

// Server -> Client. The uniform tile regions inside the subscribed region.
type TilesMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Frame           int          `json:"frame"`
	Region          Region       `json:"region"`
	Tiles           []TileRegion `json:"tiles"`
	Truncated       bool         `json:"truncated,omitempty"`
}

type TileRegion struct {
	Min   [3]int `json:"min"`
	Size  [3]int `json:"size"`
	HP    int    `json:"hp"`
	Color [3]int `json:"color"`
	Shape int    `json:"shape,omitempty"`
}

// Server -> Client. Sent every frame.
type FrameMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Frame           int        `json:"frame"`
	Items           []DrawItem `json:"items"`
	Effects         []Effect   `json:"effects"`
	Edits           []TileEdit `json:"edits,omitempty"`
	Stats           FrameStats `json:"stats"`
}

type DrawItem struct {
	Kind   string     `json:"kind"`
	Mesh   string     `json:"mesh,omitempty"`
	Pos    [3]float64 `json:"pos"`
	Quat   [4]float64 `json:"quat"`
	Radius float64    `json:"radius,omitempty"`
}

type Effect struct {
	Min  [3]int `json:"min"`
	Size int    `json:"size"`
	Age  int    `json:"age"`
}

// TileEdit carries the new tile of an edited cell so clients can patch
// their TILES copy.
type TileEdit struct {
	Pos   [3]int `json:"pos"`
	HP    int    `json:"hp"`
	Color [3]int `json:"color"`
	Shape int    `json:"shape,omitempty"`
}

type FrameStats struct {
	Islands   int `json:"islands"`
	Sprites   int `json:"sprites"`
	Voxels    int `json:"voxels"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Contacts  int `json:"contacts"`
	Hits      int `json:"hits"`
	Destroyed int `json:"destroyed"`
}
