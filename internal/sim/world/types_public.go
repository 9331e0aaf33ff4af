package world

import (
	"tubecraft.ai/internal/protocol"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

type Vec3i = modelpkg.Vec3i
type Cell = modelpkg.Cell
type Station = modelpkg.Station
type PendingBooking = modelpkg.PendingBooking

// ActionEnvelope carries one player action into the world loop. Resp must
// be buffered; the loop never blocks on it.
type ActionEnvelope struct {
	PlayerID string
	// Admin allows forced removals and unbreakable blocks.
	Admin bool
	Act   protocol.ActMsg
	Resp  chan protocol.ActResultMsg
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Seq         uint64 `json:"seq"`
	Actor       string `json:"actor"`
	Action      string `json:"action"` // e.g. "SET_BLOCK", "BOOK"
	Pos         [3]int `json:"pos"`
	From        uint16 `json:"from"`
	To          uint16 `json:"to"`
	Station     string `json:"station,omitempty"`
	Destination string `json:"destination,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Counters are cumulative action outcomes, carried across snapshots.
type Counters struct {
	Placements uint64 `json:"placements"`
	Removals   uint64 `json:"removals"`
	Rejections uint64 `json:"rejections"`
	Bookings   uint64 `json:"bookings"`
	Departures uint64 `json:"departures"`
}

// StationView is the LIST_STATIONS row.
type StationView struct {
	Name       string  `json:"name"`
	Pos        [3]int  `json:"pos"`
	BookingPos *[3]int `json:"booking_pos,omitempty"`
	Info       string  `json:"info,omitempty"`
	Pending    string  `json:"pending_destination,omitempty"`
}
