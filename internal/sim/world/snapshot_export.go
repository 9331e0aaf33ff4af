package world

import (
	"tubecraft.ai/internal/persistence/snapshot"
	"tubecraft.ai/internal/sim/world/terrain/store"
)

// ExportSnapshot captures the world. It must run on the world loop goroutine
// (or before Run starts).
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Seq:     w.seq.Load(),
		},
		BoundaryR:          w.cfg.BoundaryR,
		MaxBookingDistance: w.cfg.MaxBookingDistance,
		Reachability:       w.cfg.Reachability,
		CatalogDigest:      w.catalogs.Blocks.PaletteDigest,
		Cells:              store.ExportCells(w.grid),
		Counters: snapshot.CountersV1{
			BookingSeq: w.bookings.Seq(),
			Placements: w.counters.Placements,
			Removals:   w.counters.Removals,
			Rejections: w.counters.Rejections,
			Bookings:   w.counters.Bookings,
			Departures: w.counters.Departures,
		},
	}
	for _, st := range w.stations.All() {
		sv := snapshot.StationV1{Name: st.Name, Pos: st.Pos.ToArray(), Info: st.Info}
		if st.HasBooking {
			bp := st.BookingPos.ToArray()
			sv.BookingPos = &bp
		}
		snap.Stations = append(snap.Stations, sv)
	}
	for _, pb := range w.bookings.All() {
		snap.Bookings = append(snap.Bookings, snapshot.BookingV1{
			Origin:      pb.Origin,
			Destination: pb.Destination,
			Seq:         pb.Seq,
		})
	}
	return snap
}
