package store

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

const ChunkEdge = 16

type ChunkKey struct {
	CX int
	CY int
	CZ int
}

// Chunk holds the occupied cells of one 16x16x16 region. Unset cells are AIR.
type Chunk struct {
	Key   ChunkKey
	Cells map[modelpkg.Vec3i]modelpkg.Cell

	dirty bool
	hash  [32]byte
}

func newChunk(k ChunkKey) *Chunk {
	return &Chunk{Key: k, Cells: map[modelpkg.Vec3i]modelpkg.Cell{}, dirty: true}
}

func (c *Chunk) Get(p modelpkg.Vec3i) modelpkg.Cell {
	return c.Cells[p]
}

func (c *Chunk) Set(p modelpkg.Vec3i, cell modelpkg.Cell) {
	old, ok := c.Cells[p]
	if cell.IsZero() {
		if !ok {
			return
		}
		delete(c.Cells, p)
		c.dirty = true
		return
	}
	if ok && old == cell {
		return
	}
	c.Cells[p] = cell
	c.dirty = true
}

// SortedPositions returns the occupied positions in X,Y,Z order.
func (c *Chunk) SortedPositions() []modelpkg.Vec3i {
	out := make([]modelpkg.Vec3i, 0, len(c.Cells))
	for p := range c.Cells {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [8]byte
		put := func(v int64) {
			binary.LittleEndian.PutUint64(tmp[:], uint64(v))
			h.Write(tmp[:])
		}
		for _, p := range c.SortedPositions() {
			cell := c.Cells[p]
			put(int64(p.X))
			put(int64(p.Y))
			put(int64(p.Z))
			put(int64(cell.Block))
			put(int64(cell.Kind))
			if cell.HasPeer {
				put(1)
				put(int64(cell.Peer.X))
				put(int64(cell.Peer.Y))
				put(int64(cell.Peer.Z))
			} else {
				put(0)
			}
			if cell.Diggable {
				put(1)
			} else {
				put(0)
			}
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// ChunkStore is the sparse voxel grid. Only chunks with at least one occupied
// cell are kept.
type ChunkStore struct {
	// BoundaryR limits |x| and |z| when > 0.
	BoundaryR int
	Chunks    map[ChunkKey]*Chunk
}

func NewChunkStore(boundaryR int) *ChunkStore {
	return &ChunkStore{
		BoundaryR: boundaryR,
		Chunks:    map[ChunkKey]*Chunk{},
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func KeyOf(p modelpkg.Vec3i) ChunkKey {
	return ChunkKey{
		CX: floorDiv(p.X, ChunkEdge),
		CY: floorDiv(p.Y, ChunkEdge),
		CZ: floorDiv(p.Z, ChunkEdge),
	}
}
