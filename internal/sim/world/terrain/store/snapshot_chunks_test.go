package store

import (
	"testing"

	snapv1 "tubecraft.ai/internal/persistence/snapshot"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func TestExportAndImportCellsRoundTrip(t *testing.T) {
	s := NewChunkStore(0)
	a := modelpkg.Vec3i{X: 1, Y: 0, Z: -2}
	b := modelpkg.Vec3i{X: 2, Y: 0, Z: -2}
	s.SetCell(a, modelpkg.Cell{Block: 3, Kind: modelpkg.KindHead, Peer: b, HasPeer: true, Diggable: true})
	s.SetCell(b, modelpkg.Cell{Block: 3, Kind: modelpkg.KindHead, Peer: a, HasPeer: true, Diggable: true})
	s.SetCell(modelpkg.Vec3i{X: -40, Y: 5, Z: 7}, modelpkg.Cell{Block: 4})

	exported := ExportCells(s)
	if len(exported) != 3 {
		t.Fatalf("expected 3 exported cells, got %d", len(exported))
	}

	imported, err := ImportCells(0, exported)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if got := imported.Cell(a); got != s.Cell(a) {
		t.Fatalf("cell a mismatch: got %+v want %+v", got, s.Cell(a))
	}
	if got := imported.Cell(modelpkg.Vec3i{X: -40, Y: 5, Z: 7}).Block; got != 4 {
		t.Fatalf("block=%d want 4", got)
	}
	for k, ch := range s.Chunks {
		if imported.Chunks[k] == nil || imported.Chunks[k].Digest() != ch.Digest() {
			t.Fatalf("chunk %+v digest mismatch", k)
		}
	}
}

func TestImportCellsRejectsUnknownKind(t *testing.T) {
	_, err := ImportCells(0, []snapv1.CellV1{{Pos: [3]int{0, 0, 0}, Block: 1, Kind: "SPIRAL"}})
	if err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
