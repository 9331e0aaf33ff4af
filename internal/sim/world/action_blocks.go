package world

import (
	"strings"

	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/catalogs"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func (w *World) placeBlock(actor string, pos Vec3i, blockName, stationName string) error {
	if !w.grid.InBounds(pos) {
		return reject(protocol.ErrInvalidTarget, "%v is outside the world boundary", pos)
	}
	id, ok := w.catalogs.Blocks.Index[blockName]
	if !ok || id == 0 {
		return reject(protocol.ErrBadRequest, "unknown block %q", blockName)
	}
	if !w.grid.Cell(pos).IsZero() {
		return reject(protocol.ErrConflict, "%v is occupied", pos)
	}

	audit := AuditEntry{Actor: actor, Action: "SET_BLOCK", Pos: pos.ToArray(), To: id}
	switch w.catalogs.Blocks.Role(id) {
	case catalogs.RoleTube:
		w.grid.SetCell(pos, modelpkg.Cell{Block: id, Kind: modelpkg.KindSingle})
		if err := w.topo.OnSegmentPlaced(pos); err != nil {
			return err
		}
		audit.Reason = w.grid.Kind(pos).String()
	case catalogs.RoleJunction:
		w.grid.SetCell(pos, modelpkg.Cell{Block: id, Kind: modelpkg.KindJunction})
		if err := w.topo.OnSegmentPlaced(pos); err != nil {
			return err
		}
		audit.Reason = modelpkg.KindJunction.String()
	case catalogs.RoleStation:
		name := strings.TrimSpace(stationName)
		if err := w.stations.Register(name, pos); err != nil {
			return err
		}
		w.grid.SetCell(pos, modelpkg.Cell{Block: id, Diggable: true})
		audit.Action = "REGISTER_STATION"
		audit.Station = name
	default:
		w.grid.SetCell(pos, modelpkg.Cell{Block: id, Diggable: true})
	}

	w.counters.Placements++
	audit.Seq = w.nextSeq()
	w.audit(audit)
	return nil
}

// breakBlock clears pos. force skips the diggable check on tube cells; admin
// may also break blocks the catalog marks unbreakable.
func (w *World) breakBlock(actor string, pos Vec3i, force, admin bool) error {
	former := w.grid.Cell(pos)
	if former.IsZero() {
		return reject(protocol.ErrInvalidTarget, "nothing to break at %v", pos)
	}
	def := w.catalogs.Blocks.Defs[w.blockName(former.Block)]
	if !def.Breakable && !admin {
		return reject(protocol.ErrNoPermission, "%s is not breakable", def.ID)
	}
	if former.Kind.IsTube() && !force && !w.topo.CanRemove(pos) {
		return reject(protocol.ErrNoPermission, "tube at %v is inside a chain and cannot be dug", pos)
	}

	audit := AuditEntry{Actor: actor, Action: "SET_BLOCK", Pos: pos.ToArray(), From: former.Block}
	w.grid.SetCell(pos, modelpkg.Cell{})
	switch w.catalogs.Blocks.Role(former.Block) {
	case catalogs.RoleTube, catalogs.RoleJunction:
		w.topo.OnSegmentRemoved(pos, former)
		if force {
			audit.Reason = "FORCED"
		}
	case catalogs.RoleStation:
		if st, ok := w.stations.ByPosition(pos); ok {
			w.stations.Remove(st.Name)
			w.bookings.Drop(st.Name)
			w.dropFormsFor(st.Name, Vec3i{}, false)
			audit.Action = "REMOVE_STATION"
			audit.Station = st.Name
		}
	case catalogs.RoleTerminal:
		if st, ok := w.stations.ByTerminal(pos); ok {
			w.stations.UnbindBooking(st.Name)
			audit.Action = "UNBIND_TERMINAL"
			audit.Station = st.Name
		}
		w.dropFormsFor("", pos, true)
	}

	w.counters.Removals++
	audit.Seq = w.nextSeq()
	w.audit(audit)
	return nil
}

func (w *World) blockName(id uint16) string {
	if int(id) >= len(w.catalogs.Blocks.Palette) {
		return ""
	}
	return w.catalogs.Blocks.Palette[id]
}
