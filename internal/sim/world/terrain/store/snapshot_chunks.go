package store

import (
	"fmt"

	snapv1 "tubecraft.ai/internal/persistence/snapshot"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

// ExportCells converts every occupied cell into snapshot form.
func ExportCells(s *ChunkStore) []snapv1.CellV1 {
	out := make([]snapv1.CellV1, 0, s.CellCount())
	s.ForEach(func(p modelpkg.Vec3i, c modelpkg.Cell) {
		cv := snapv1.CellV1{
			Pos:      p.ToArray(),
			Block:    c.Block,
			Kind:     c.Kind.String(),
			Diggable: c.Diggable,
		}
		if c.HasPeer {
			peer := c.Peer.ToArray()
			cv.Peer = &peer
		}
		out = append(out, cv)
	})
	return out
}

// ImportCells rebuilds a chunk store from snapshot cells.
func ImportCells(boundaryR int, cells []snapv1.CellV1) (*ChunkStore, error) {
	s := NewChunkStore(boundaryR)
	for _, cv := range cells {
		kind, ok := modelpkg.ParseKind(cv.Kind)
		if !ok {
			return nil, fmt.Errorf("snapshot cell %v: unknown kind %q", cv.Pos, cv.Kind)
		}
		c := modelpkg.Cell{Block: cv.Block, Kind: kind, Diggable: cv.Diggable}
		if cv.Peer != nil {
			c.Peer = modelpkg.FromArray(*cv.Peer)
			c.HasPeer = true
		}
		if c.IsZero() {
			return nil, fmt.Errorf("snapshot cell %v: empty cell", cv.Pos)
		}
		p := modelpkg.FromArray(cv.Pos)
		if !s.InBounds(p) {
			return nil, fmt.Errorf("snapshot cell %v: out of bounds", cv.Pos)
		}
		s.SetCell(p, c)
	}
	for _, ch := range s.Chunks {
		_ = ch.Digest()
	}
	return s, nil
}
