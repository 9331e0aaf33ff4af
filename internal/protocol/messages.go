package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	PlayerID        string         `json:"player_id"`
	WorldID         string         `json:"world_id"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type WorldParams struct {
	ChunkSize          [3]int `json:"chunk_size"`
	BoundaryR          int    `json:"boundary_r"`
	MaxBookingDistance int    `json:"max_booking_distance"`
	Reachability       string `json:"reachability"`
}

type CatalogDigests struct {
	BlockPalette DigestRef `json:"block_palette"`
	TuningDigest string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// Action names carried by ACT.
const (
	ActPlaceBlock          = "PLACE_BLOCK"
	ActBreakBlock          = "BREAK_BLOCK"
	ActOpenTerminal        = "OPEN_TERMINAL"
	ActSubmitForm          = "SUBMIT_FORM"
	ActBook                = "BOOK"
	ActDepart              = "DEPART"
	ActListStations        = "LIST_STATIONS"
	ActStationDestinations = "STATION_DESTINATIONS"
)

// ACT (client -> server): one player action.
type ActMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ID              string            `json:"id"`
	Action          string            `json:"action"`
	Pos             *[3]int           `json:"pos,omitempty"`
	Block           string            `json:"block,omitempty"`
	Name            string            `json:"name,omitempty"`
	Force           bool              `json:"force,omitempty"`
	FormID          string            `json:"form_id,omitempty"`
	Fields          map[string]string `json:"fields,omitempty"`
	Station         string            `json:"station,omitempty"`
	Index           int               `json:"index,omitempty"`
}

// ACT_RESULT (server -> client)
type ActResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ActID           string `json:"act_id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Seq             uint64 `json:"seq,omitempty"`
	Data            any    `json:"data,omitempty"`
}

// EVENT (server -> client): something happened in the world.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Event           Event  `json:"event"`
}

type Event map[string]any

// FORM (server -> client): a terminal UI to show. Returned as ACT_RESULT data
// for OPEN_TERMINAL.
type FormMsg struct {
	Type    string      `json:"type"`
	FormID  string      `json:"form_id"`
	Kind    string      `json:"kind"`
	Station string      `json:"station,omitempty"`
	Fields  []FormField `json:"fields,omitempty"`
	Rows    []FormRow   `json:"rows,omitempty"`
}

type FormField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type FormRow struct {
	Index        int    `json:"index"`
	Destination  string `json:"destination"`
	DistanceM    int    `json:"distance_m"`
	PositionText string `json:"position_text"`
	Info         string `json:"info,omitempty"`
}
