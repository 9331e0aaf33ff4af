package world

import (
	"testing"

	"tubecraft.ai/internal/protocol"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func TestPlaceBlock_TubeChainKinds(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	for x := 0; x < 3; x++ {
		mustOK(t, w.act("p1", place(x, 0, 0, "TUBE")))
	}
	wantKinds := []modelpkg.Kind{modelpkg.KindHead, modelpkg.KindLink, modelpkg.KindHead}
	for x, want := range wantKinds {
		if got := w.grid.Kind(Vec3i{X: x}); got != want {
			t.Fatalf("kind(%d)=%s want %s", x, got, want)
		}
	}
	if c := w.grid.Cell(Vec3i{}); !c.HasPeer || c.Peer != (Vec3i{X: 2}) {
		t.Fatalf("head peer=%+v", c)
	}
}

func TestPlaceBlock_InvalidPlacementLeavesGridUnchanged(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	mustOK(t, w.act("p1", place(1, 0, 0, "TUBE")))
	mustOK(t, w.act("p1", place(-1, 0, 0, "TUBE")))
	mustOK(t, w.act("p1", place(0, 0, 1, "TUBE")))
	before := w.stateDigest()

	mustCode(t, w.act("p1", place(0, 0, 0, "TUBE")), protocol.ErrInvalidPlacement)
	if c := w.grid.Cell(Vec3i{}); !c.IsZero() {
		t.Fatalf("rejected placement left %+v", c)
	}
	if after := w.stateDigest(); after != before {
		t.Fatalf("digest changed after rejected placement")
	}

	// A junction is the way to join three chains.
	mustOK(t, w.act("p1", place(0, 0, 0, "TUBE_JUNCTION")))
	if !w.junctions.Forms(Vec3i{}) {
		t.Fatalf("junction with three spokes must form")
	}
}

func TestPlaceBlock_Rejections(t *testing.T) {
	w := newTestWorld(t, WorldConfig{BoundaryR: 10})
	mustCode(t, w.act("p1", place(11, 0, 0, "TUBE")), protocol.ErrInvalidTarget)
	mustCode(t, w.act("p1", place(0, 0, 0, "UNOBTAINIUM")), protocol.ErrBadRequest)
	mustCode(t, w.act("p1", place(0, 0, 0, "AIR")), protocol.ErrBadRequest)
	mustOK(t, w.act("p1", place(0, 0, 0, "STONE")))
	mustCode(t, w.act("p1", place(0, 0, 0, "TUBE")), protocol.ErrConflict)
	mustCode(t, w.act("p1", protocol.ActMsg{ID: "x", Action: protocol.ActPlaceBlock, Block: "TUBE"}), protocol.ErrBadRequest)
	mustCode(t, w.act("p1", protocol.ActMsg{ID: "x", Action: "TELEPORT"}), protocol.ErrBadRequest)
	if w.counters.Rejections != 6 {
		t.Fatalf("rejections=%d want 6", w.counters.Rejections)
	}
}

func TestBreakBlock_LinkNeedsForce(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	for x := 0; x < 5; x++ {
		mustOK(t, w.act("p1", place(x, 0, 0, "TUBE")))
	}
	mustCode(t, w.act("p1", dig(2, 0, 0)), protocol.ErrNoPermission)

	// Force is only honoured for admin envelopes.
	forced := dig(2, 0, 0)
	forced.Force = true
	mustCode(t, w.act("p1", forced), protocol.ErrNoPermission)
	res := w.apply(ActionEnvelope{PlayerID: "admin", Admin: true, Act: forced})
	mustOK(t, res)

	if err := w.topo.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := len(w.topo.Chains()); got != 2 {
		t.Fatalf("chains=%d want 2", got)
	}

	// Ends stay diggable.
	mustOK(t, w.act("p1", dig(4, 0, 0)))
	if got := w.grid.Kind(Vec3i{X: 3}); got != modelpkg.KindSingle {
		t.Fatalf("kind(3)=%s want SINGLE", got)
	}
	mustCode(t, w.act("p1", dig(4, 0, 0)), protocol.ErrInvalidTarget)
}

func TestAudit_PlaceAndBreakWriteEntries(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	aud := &memAudit{}
	w.SetAuditLogger(aud)

	mustOK(t, w.act("p1", place(0, 0, 0, "TUBE")))
	mustOK(t, w.act("p1", placeStation(5, 0, 0, "Central")))
	mustOK(t, w.act("p1", dig(0, 0, 0)))
	mustCode(t, w.act("p1", dig(0, 0, 0)), protocol.ErrInvalidTarget)

	if len(aud.entries) != 3 {
		t.Fatalf("audit entries=%d want 3", len(aud.entries))
	}
	tube := w.catalogs.Blocks.Index["TUBE"]
	if e := aud.entries[0]; e.Action != "SET_BLOCK" || e.To != tube || e.Seq != 1 {
		t.Fatalf("entry0=%+v", e)
	}
	if e := aud.entries[1]; e.Action != "REGISTER_STATION" || e.Station != "Central" {
		t.Fatalf("entry1=%+v", e)
	}
	if e := aud.entries[2]; e.From != tube || e.To != 0 || e.Seq != 3 {
		t.Fatalf("entry2=%+v", e)
	}
}
