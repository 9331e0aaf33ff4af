package topology

import (
	"testing"

	"tubecraft.ai/internal/sim/world/feature/tube/junction"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
	"tubecraft.ai/internal/sim/world/terrain/store"
)

const tubeBlock = 1

type rig struct {
	grid *store.ChunkStore
	res  *junction.Resolver
	eng  *Engine
}

func newRig() *rig {
	g := store.NewChunkStore(0)
	res := junction.New(g)
	return &rig{grid: g, res: res, eng: New(g, res)}
}

func v(x, y, z int) modelpkg.Vec3i { return modelpkg.Vec3i{X: x, Y: y, Z: z} }

func (r *rig) place(p modelpkg.Vec3i) error {
	r.grid.SetCell(p, modelpkg.Cell{Block: tubeBlock, Kind: modelpkg.KindSingle})
	return r.eng.OnSegmentPlaced(p)
}

func (r *rig) placeJunction(p modelpkg.Vec3i) error {
	r.grid.SetCell(p, modelpkg.Cell{Block: tubeBlock + 1, Kind: modelpkg.KindJunction})
	return r.eng.OnSegmentPlaced(p)
}

func (r *rig) remove(p modelpkg.Vec3i) {
	former := r.grid.Cell(p)
	r.grid.SetCell(p, modelpkg.Cell{})
	r.eng.OnSegmentRemoved(p, former)
}

func (r *rig) mustPlace(t *testing.T, ps ...modelpkg.Vec3i) {
	t.Helper()
	for _, p := range ps {
		if err := r.place(p); err != nil {
			t.Fatalf("place %v: %v", p, err)
		}
	}
}

func (r *rig) mustVerify(t *testing.T) {
	t.Helper()
	if err := r.eng.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func (r *rig) expectKind(t *testing.T, p modelpkg.Vec3i, want modelpkg.Kind) {
	t.Helper()
	if got := r.grid.Kind(p); got != want {
		t.Fatalf("kind(%v)=%s want %s", p, got, want)
	}
}

func (r *rig) expectPeers(t *testing.T, a, b modelpkg.Vec3i) {
	t.Helper()
	ca, cb := r.grid.Cell(a), r.grid.Cell(b)
	if !ca.HasPeer || ca.Peer != b {
		t.Fatalf("peer(%v)=%v (has=%v) want %v", a, ca.Peer, ca.HasPeer, b)
	}
	if !cb.HasPeer || cb.Peer != a {
		t.Fatalf("peer(%v)=%v (has=%v) want %v", b, cb.Peer, cb.HasPeer, a)
	}
}
