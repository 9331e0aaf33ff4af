package world

import (
	"fmt"

	"tubecraft.ai/internal/persistence/snapshot"
	"tubecraft.ai/internal/sim/catalogs"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
	"tubecraft.ai/internal/sim/world/terrain/store"
)

// NewFromSnapshot builds a world from snap. Grid and registry settings come
// from the snapshot; everything else from cfg.
func NewFromSnapshot(cfg WorldConfig, cats *catalogs.Catalogs, snap snapshot.SnapshotV1) (*World, error) {
	if snap.Header.Version != snapshot.Version {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if snap.CatalogDigest != "" && snap.CatalogDigest != cats.Blocks.PaletteDigest {
		return nil, fmt.Errorf("snapshot block palette %s does not match catalog %s", snap.CatalogDigest, cats.Blocks.PaletteDigest)
	}
	if snap.Header.WorldID != "" {
		cfg.ID = snap.Header.WorldID
	}
	cfg.BoundaryR = snap.BoundaryR
	if snap.MaxBookingDistance > 0 {
		cfg.MaxBookingDistance = snap.MaxBookingDistance
	}
	if snap.Reachability != "" {
		cfg.Reachability = snap.Reachability
	}
	w, err := New(cfg, cats)
	if err != nil {
		return nil, err
	}
	if err := w.importSnapshot(snap); err != nil {
		return nil, err
	}
	w.publishMetrics()
	return w, nil
}

func (w *World) importSnapshot(snap snapshot.SnapshotV1) error {
	grid, err := store.ImportCells(w.cfg.BoundaryR, snap.Cells)
	if err != nil {
		return err
	}
	w.resetState(grid)
	if err := w.topo.Verify(); err != nil {
		return fmt.Errorf("snapshot topology: %w", err)
	}
	for _, sv := range snap.Stations {
		st := modelpkg.Station{Name: sv.Name, Pos: modelpkg.FromArray(sv.Pos), Info: sv.Info}
		if sv.BookingPos != nil {
			st.BookingPos = modelpkg.FromArray(*sv.BookingPos)
			st.HasBooking = true
		}
		if err := w.stations.Restore(st); err != nil {
			return fmt.Errorf("snapshot station: %w", err)
		}
	}
	trips := make([]modelpkg.PendingBooking, 0, len(snap.Bookings))
	for _, b := range snap.Bookings {
		if _, ok := w.stations.Lookup(b.Origin); !ok {
			return fmt.Errorf("snapshot booking from unknown station %q", b.Origin)
		}
		trips = append(trips, modelpkg.PendingBooking{Origin: b.Origin, Destination: b.Destination, Seq: b.Seq})
	}
	w.bookings.Restore(snap.Counters.BookingSeq, trips)
	w.counters = Counters{
		Placements: snap.Counters.Placements,
		Removals:   snap.Counters.Removals,
		Rejections: snap.Counters.Rejections,
		Bookings:   snap.Counters.Bookings,
		Departures: snap.Counters.Departures,
	}
	w.seq.Store(snap.Header.Seq)
	return nil
}
