package protocol

// HELLO (observer -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ObserverName    string            `json:"observer_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> observer)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ObserverID      string      `json:"observer_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz         int        `json:"tick_rate_hz"`
	Seed               int64      `json:"seed"`
	TileExtent         float64    `json:"tile_extent"`
	GenerationDistance float64    `json:"generation_distance"`
	HideDistance       float64    `json:"hide_distance"`
	Origin             [3]float64 `json:"origin"`
}

// MOVE (observer -> server): the observer's current position. The latest
// MOVE received before a tick is the position that tick sees.
type MoveMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Pos             [3]float64 `json:"pos"`
}
