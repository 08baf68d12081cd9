package protocol

// Placement event types.
const (
	EventTilePlaced   = "TILE_PLACED"
	EventObjectPlaced = "OBJECT_PLACED"
	EventTileHidden   = "TILE_HIDDEN"
	EventTileShown    = "TILE_SHOWN"
)

type Event struct {
	Tick uint64 `json:"tick"`
	Type string `json:"type"`

	Tile [2]int `json:"tile"` // grid coordinates relative to the origin tile

	Variant  string     `json:"variant,omitempty"`
	Item     string     `json:"item,omitempty"`
	Pos      [3]float64 `json:"pos"`
	Yaw      float64    `json:"yaw,omitempty"`
	Backfill bool       `json:"backfill,omitempty"`
}

type EventBatchItem struct {
	Cursor uint64 `json:"cursor"`
	Event  Event  `json:"event"`
}

// EVENTS (server -> observer): placement events since the session's cursor.
type EventsMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	Tick            uint64           `json:"tick"`
	Events          []EventBatchItem `json:"events"`
	NextCursor      uint64           `json:"next_cursor"`
}
