package topology

import (
	"errors"
	"math/rand"
	"testing"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func TestPlace_IsolatedBecomesSingle(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0))
	c := r.grid.Cell(v(0, 0, 0))
	if c.Kind != modelpkg.KindSingle || !c.HasPeer || c.Peer != v(0, 0, 0) || !c.Diggable {
		t.Fatalf("cell=%+v", c)
	}
}

func TestPlace_ExtendDemotesNeighbour(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0), v(1, 0, 0))
	r.expectKind(t, v(0, 0, 0), modelpkg.KindHead)
	r.expectKind(t, v(1, 0, 0), modelpkg.KindHead)
	r.expectPeers(t, v(0, 0, 0), v(1, 0, 0))

	r.mustPlace(t, v(2, 0, 0))
	r.expectKind(t, v(1, 0, 0), modelpkg.KindLink)
	if r.grid.Cell(v(1, 0, 0)).Diggable {
		t.Fatalf("link must not be diggable")
	}
	r.expectPeers(t, v(0, 0, 0), v(2, 0, 0))
	r.mustVerify(t)
}

func TestPlace_BridgeJoinsTwoSingles(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0), v(2, 0, 0), v(1, 0, 0))
	r.expectKind(t, v(1, 0, 0), modelpkg.KindLink)
	r.expectKind(t, v(0, 0, 0), modelpkg.KindHead)
	r.expectKind(t, v(2, 0, 0), modelpkg.KindHead)
	r.expectPeers(t, v(0, 0, 0), v(2, 0, 0))
	r.mustVerify(t)
}

func TestPlace_BridgeJoinsTwoChains(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0), v(0, 1, 0), v(0, 3, 0), v(0, 4, 0), v(0, 2, 0))
	for y := 1; y <= 3; y++ {
		r.expectKind(t, v(0, y, 0), modelpkg.KindLink)
	}
	r.expectPeers(t, v(0, 0, 0), v(0, 4, 0))
	if got := len(r.eng.Chains()); got != 1 {
		t.Fatalf("chains=%d want 1", got)
	}
	r.mustVerify(t)
}

func TestPlace_ThreeNeighboursRejected(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(1, 0, 0), v(-1, 0, 0), v(0, 1, 0))
	before := map[modelpkg.Vec3i]modelpkg.Cell{}
	for _, p := range []modelpkg.Vec3i{v(1, 0, 0), v(-1, 0, 0), v(0, 1, 0)} {
		before[p] = r.grid.Cell(p)
	}

	err := r.place(v(0, 0, 0))
	if !errors.Is(err, ErrInvalidPlacement) {
		t.Fatalf("err=%v want ErrInvalidPlacement", err)
	}
	if c := r.grid.Cell(v(0, 0, 0)); !c.IsZero() {
		t.Fatalf("rejected cell left behind: %+v", c)
	}
	for p, c := range before {
		if got := r.grid.Cell(p); got != c {
			t.Fatalf("neighbour %v changed: %+v -> %+v", p, c, got)
		}
	}
	r.mustVerify(t)
}

func TestPlace_TouchingLinkRejected(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0), v(1, 0, 0), v(2, 0, 0))
	if err := r.place(v(1, 1, 0)); !errors.Is(err, ErrInvalidPlacement) {
		t.Fatalf("err=%v want ErrInvalidPlacement", err)
	}
	r.expectKind(t, v(1, 1, 0), modelpkg.KindEmpty)
	r.mustVerify(t)
}

func TestPlace_ClosingLoopRejected(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0), v(1, 0, 0), v(1, 1, 0))
	if err := r.place(v(0, 1, 0)); !errors.Is(err, ErrInvalidPlacement) {
		t.Fatalf("err=%v want ErrInvalidPlacement", err)
	}
	r.expectPeers(t, v(0, 0, 0), v(1, 1, 0))
	r.mustVerify(t)
}

func TestClassify_DoesNotWrite(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0))
	before := r.grid.Cell(v(0, 0, 0))
	cls := r.eng.Classify(v(1, 0, 0))
	if cls.Class != ClassExtend || len(cls.Ends) != 1 || cls.Ends[0] != v(0, 0, 0) {
		t.Fatalf("classify=%+v", cls)
	}
	if r.grid.Cell(v(0, 0, 0)) != before {
		t.Fatalf("classify mutated the grid")
	}
}

// monotonePath returns n cells where each step moves +1 along a random axis,
// so no two non-consecutive cells are face-adjacent.
func monotonePath(rng *rand.Rand, n int) []modelpkg.Vec3i {
	p := v(0, 0, 0)
	out := []modelpkg.Vec3i{p}
	dirs := []modelpkg.Vec3i{v(1, 0, 0), v(0, 1, 0), v(0, 0, 1)}
	for len(out) < n {
		p = p.Add(dirs[rng.Intn(len(dirs))])
		out = append(out, p)
	}
	return out
}

func TestPlace_AnyOrderYieldsSymmetricEnds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(24)
		path := monotonePath(rng, n)
		r := newRig()
		for _, i := range rng.Perm(n) {
			if err := r.place(path[i]); err != nil {
				t.Fatalf("trial %d: place %v: %v", trial, path[i], err)
			}
		}
		r.mustVerify(t)
		chains := r.eng.Chains()
		if len(chains) != 1 {
			t.Fatalf("trial %d: chains=%d want 1", trial, len(chains))
		}
		first, last := path[0], path[n-1]
		ends := map[modelpkg.Vec3i]bool{chains[0].A: true, chains[0].B: true}
		if !ends[first] || !ends[last] {
			t.Fatalf("trial %d: chain=%+v want ends %v %v", trial, chains[0], first, last)
		}
		for _, end := range []modelpkg.Vec3i{first, last} {
			peer := r.grid.Cell(end).Peer
			if back := r.grid.Cell(peer).Peer; back != end {
				t.Fatalf("trial %d: peer(peer(%v))=%v", trial, end, back)
			}
		}
	}
}

func TestRemove_LinkSplitsChain(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 40; trial++ {
		n := 3 + rng.Intn(20)
		path := monotonePath(rng, n)
		r := newRig()
		r.mustPlace(t, path...)
		k := 1 + rng.Intn(n-2)
		before := len(r.eng.Chains())

		if r.eng.CanRemove(path[k]) {
			t.Fatalf("trial %d: link %v reported diggable", trial, path[k])
		}
		r.remove(path[k])
		r.mustVerify(t)

		if got := len(r.eng.Chains()); got != before+1 {
			t.Fatalf("trial %d: chains=%d want %d", trial, got, before+1)
		}
		r.expectPeers(t, path[0], path[k-1])
		r.expectPeers(t, path[k+1], path[n-1])
	}
}

func TestRemove_HeadShortensChain(t *testing.T) {
	r := newRig()
	r.mustPlace(t, v(0, 0, 0), v(1, 0, 0), v(2, 0, 0))
	r.remove(v(0, 0, 0))
	r.expectKind(t, v(1, 0, 0), modelpkg.KindHead)
	r.expectPeers(t, v(1, 0, 0), v(2, 0, 0))
	if !r.eng.CanRemove(v(1, 0, 0)) {
		t.Fatalf("promoted head must be diggable")
	}

	r.remove(v(2, 0, 0))
	r.expectKind(t, v(1, 0, 0), modelpkg.KindSingle)
	r.expectPeers(t, v(1, 0, 0), v(1, 0, 0))
	r.mustVerify(t)

	r.remove(v(1, 0, 0))
	if got := len(r.eng.Chains()); got != 0 {
		t.Fatalf("chains=%d want 0", got)
	}
}

func TestRemove_ThenReplaceRestoresChain(t *testing.T) {
	r := newRig()
	path := []modelpkg.Vec3i{v(0, 0, 0), v(1, 0, 0), v(2, 0, 0), v(3, 0, 0), v(4, 0, 0)}
	r.mustPlace(t, path...)
	r.remove(path[2])
	r.mustPlace(t, path[2])
	r.expectPeers(t, path[0], path[4])
	r.mustVerify(t)
}

func TestTrace_WalksWholeChain(t *testing.T) {
	r := newRig()
	path := []modelpkg.Vec3i{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(1, 1, 1)}
	r.mustPlace(t, path[3], path[0], path[2], path[1])
	got, err := r.eng.Trace(path[0])
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(got) != len(path) {
		t.Fatalf("trace=%v want %v", got, path)
	}
	for i := range path {
		if got[i] != path[i] {
			t.Fatalf("trace=%v want %v", got, path)
		}
	}
	if _, err := r.eng.Trace(path[1]); err == nil {
		t.Fatalf("expected error tracing from a link")
	}
}
