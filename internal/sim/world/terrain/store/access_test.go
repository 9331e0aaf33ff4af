package store

import (
	"testing"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func TestChunkStore_SparseGetSet(t *testing.T) {
	s := NewChunkStore(0)
	p := modelpkg.Vec3i{X: -1, Y: -17, Z: 33}
	if got := s.Kind(p); got != modelpkg.KindEmpty {
		t.Fatalf("unset kind=%v want EMPTY", got)
	}
	s.SetCell(p, modelpkg.Cell{Block: 2, Kind: modelpkg.KindSingle, Peer: p, HasPeer: true, Diggable: true})
	if got := s.Kind(p); got != modelpkg.KindSingle {
		t.Fatalf("kind=%v want SINGLE", got)
	}
	if k := KeyOf(p); k != (ChunkKey{CX: -1, CY: -2, CZ: 2}) {
		t.Fatalf("KeyOf=%+v", k)
	}
	s.SetCell(p, modelpkg.Cell{})
	if len(s.Chunks) != 0 {
		t.Fatalf("empty chunk not dropped: %d chunks", len(s.Chunks))
	}
}

func TestChunkStore_BoundaryIgnoresWrites(t *testing.T) {
	s := NewChunkStore(8)
	s.SetCell(modelpkg.Vec3i{X: 9}, modelpkg.Cell{Block: 1})
	if s.CellCount() != 0 {
		t.Fatalf("out of bounds write stored")
	}
}

func TestChunk_DigestTracksChanges(t *testing.T) {
	s := NewChunkStore(0)
	p := modelpkg.Vec3i{X: 3}
	s.SetCell(p, modelpkg.Cell{Block: 1})
	ch := s.Chunks[KeyOf(p)]
	d1 := ch.Digest()
	s.SetCell(p, modelpkg.Cell{Block: 1, Kind: modelpkg.KindSingle, Peer: p, HasPeer: true, Diggable: true})
	if ch.Digest() == d1 {
		t.Fatalf("digest unchanged after edit")
	}
}
