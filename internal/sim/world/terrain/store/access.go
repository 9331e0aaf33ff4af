package store

import (
	"sort"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func (s *ChunkStore) InBounds(p modelpkg.Vec3i) bool {
	if s.BoundaryR > 0 {
		if p.X < -s.BoundaryR || p.X > s.BoundaryR || p.Z < -s.BoundaryR || p.Z > s.BoundaryR {
			return false
		}
	}
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// Cell returns the cell at p, or the zero cell (AIR, KindEmpty) when unset.
func (s *ChunkStore) Cell(p modelpkg.Vec3i) modelpkg.Cell {
	ch := s.Chunks[KeyOf(p)]
	if ch == nil {
		return modelpkg.Cell{}
	}
	return ch.Get(p)
}

func (s *ChunkStore) Kind(p modelpkg.Vec3i) modelpkg.Kind {
	return s.Cell(p).Kind
}

func (s *ChunkStore) Block(p modelpkg.Vec3i) uint16 {
	return s.Cell(p).Block
}

// SetCell writes c at p. Writing the zero cell clears the position; out of
// bounds writes are ignored.
func (s *ChunkStore) SetCell(p modelpkg.Vec3i, c modelpkg.Cell) {
	if !s.InBounds(p) {
		return
	}
	k := KeyOf(p)
	ch := s.Chunks[k]
	if ch == nil {
		if c.IsZero() {
			return
		}
		ch = newChunk(k)
		s.Chunks[k] = ch
	}
	ch.Set(p, c)
	if len(ch.Cells) == 0 {
		delete(s.Chunks, k)
	}
}

// ForEach visits every occupied cell in deterministic order.
func (s *ChunkStore) ForEach(fn func(p modelpkg.Vec3i, c modelpkg.Cell)) {
	for _, k := range s.LoadedChunkKeys() {
		ch := s.Chunks[k]
		for _, p := range ch.SortedPositions() {
			fn(p, ch.Cells[p])
		}
	}
}

func (s *ChunkStore) CellCount() int {
	n := 0
	for _, ch := range s.Chunks {
		n += len(ch.Cells)
	}
	return n
}
