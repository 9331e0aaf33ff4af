package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tubecraft.ai/internal/protocol"
)

func buildNetwork(t *testing.T, w *World) {
	t.Helper()
	mustOK(t, w.act("p1", placeStation(0, 0, 0, "A")))
	mustOK(t, w.act("p1", placeStation(8, 0, 0, "B")))
	for x := 1; x <= 3; x++ {
		mustOK(t, w.act("p1", place(x, 0, 0, "TUBE")))
	}
	mustOK(t, w.act("p1", place(4, 0, 0, "TUBE_JUNCTION")))
	for x := 5; x <= 7; x++ {
		mustOK(t, w.act("p1", place(x, 0, 0, "TUBE")))
	}
	for y := 1; y <= 3; y++ {
		mustOK(t, w.act("p1", place(4, y, 0, "TUBE")))
	}
	mustOK(t, w.act("p1", place(0, 0, 2, "BOOKING_TERMINAL")))
	f := openTerminal(t, w, "p1", 0, 0, 2)
	mustOK(t, submit(w, "p1", f.FormID, map[string]string{"name": "A", "info": "depot"}))
	mustOK(t, w.act("p1", protocol.ActMsg{ID: "book", Action: protocol.ActBook, Station: "A", Index: 1}))
}

func TestSnapshot_RoundTripPreservesState(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Reachability: "topology"})
	buildNetwork(t, w)
	snap := w.ExportSnapshot()

	w2, err := NewFromSnapshot(WorldConfig{}, w.catalogs, snap)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got, want := w2.stateDigest(), w.stateDigest(); got != want {
		t.Fatalf("digest mismatch: %s != %s", got, want)
	}
	if diff := cmp.Diff(snap, w2.ExportSnapshot()); diff != "" {
		t.Fatalf("re-export mismatch (-want +got):\n%s", diff)
	}
	if w2.cfg.Reachability != "topology" || w2.seq.Load() != w.seq.Load() {
		t.Fatalf("config/seq not restored: %+v seq=%d", w2.cfg, w2.seq.Load())
	}
	if !w2.junctions.Forms(Vec3i{X: 4}) {
		t.Fatalf("junction tables not rebuilt")
	}

	// The restored world keeps working.
	mustOK(t, w2.act("p1", protocol.ActMsg{ID: "dep", Action: protocol.ActDepart, Station: "A"}))
	mustOK(t, w2.act("p1", place(4, 4, 0, "TUBE")))
}

func TestSnapshot_RejectsBrokenTopology(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	for x := 0; x < 3; x++ {
		mustOK(t, w.act("p1", place(x, 0, 0, "TUBE")))
	}
	snap := w.ExportSnapshot()
	for i := range snap.Cells {
		if snap.Cells[i].Kind == "HEAD" {
			peer := [3]int{9, 9, 9}
			snap.Cells[i].Peer = &peer
			break
		}
	}
	if _, err := NewFromSnapshot(WorldConfig{}, w.catalogs, snap); err == nil {
		t.Fatalf("expected topology verification error")
	}
}

func TestSnapshot_RejectsForeignPalette(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	snap := w.ExportSnapshot()
	snap.CatalogDigest = "deadbeef"
	if _, err := NewFromSnapshot(WorldConfig{}, w.catalogs, snap); err == nil {
		t.Fatalf("expected palette mismatch error")
	}
}
