package junction

import (
	"testing"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

type mapGrid map[modelpkg.Vec3i]modelpkg.Cell

func (g mapGrid) Cell(p modelpkg.Vec3i) modelpkg.Cell { return g[p] }
func (g mapGrid) Kind(p modelpkg.Vec3i) modelpkg.Kind { return g[p].Kind }

func (g mapGrid) forEach(fn func(p modelpkg.Vec3i, c modelpkg.Cell)) {
	for p, c := range g {
		fn(p, c)
	}
}

func single(p modelpkg.Vec3i) modelpkg.Cell {
	return modelpkg.Cell{Kind: modelpkg.KindSingle, Peer: p, HasPeer: true, Diggable: true}
}

func TestResolver_RoutesPerDirection(t *testing.T) {
	j := modelpkg.Vec3i{}
	g := mapGrid{j: {Kind: modelpkg.KindJunction, Diggable: true}}
	east := modelpkg.Vec3i{X: 1}
	west := modelpkg.Vec3i{X: -1}
	up := modelpkg.Vec3i{Y: 1}
	for _, p := range []modelpkg.Vec3i{east, west, up} {
		g[p] = single(p)
	}
	r := New(g)
	r.UpdateJunction(j)

	if !r.Forms(j) {
		t.Fatalf("expected junction to form")
	}
	routes := r.Routes(j)
	if len(routes) != 3 {
		t.Fatalf("routes=%d want 3", len(routes))
	}
	if routes[0].Dir != east || routes[1].Dir != west || routes[2].Dir != up {
		t.Fatalf("routes not in axis order: %+v", routes)
	}
	if _, ok := r.Next(j, modelpkg.Vec3i{Z: 1}); ok {
		t.Fatalf("unexpected route towards +Z")
	}
}

func TestResolver_UpdateFromNeighbourRefreshesJunction(t *testing.T) {
	j := modelpkg.Vec3i{}
	end := modelpkg.Vec3i{X: 1}
	g := mapGrid{j: {Kind: modelpkg.KindJunction}}
	r := New(g)
	r.UpdateJunction(j)
	if len(r.Routes(j)) != 0 {
		t.Fatalf("bare junction has routes")
	}

	g[end] = single(end)
	r.UpdateJunction(end)
	if got := len(r.Routes(j)); got != 1 {
		t.Fatalf("routes=%d want 1", got)
	}
	if r.Forms(end) {
		t.Fatalf("a tube end never forms a junction")
	}
}

func TestResolver_Rebuild(t *testing.T) {
	a, b := modelpkg.Vec3i{}, modelpkg.Vec3i{X: 2}
	mid := modelpkg.Vec3i{X: 1}
	g := mapGrid{
		a:   {Kind: modelpkg.KindJunction},
		b:   {Kind: modelpkg.KindJunction},
		mid: single(mid),
	}
	r := New(g)
	r.Rebuild(g.forEach)
	got := r.Junctions()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("junctions=%v", got)
	}
	rt, ok := r.Next(a, modelpkg.Vec3i{X: 1})
	if !ok || !rt.HasOnward || rt.Onward != b {
		t.Fatalf("route=%+v ok=%v", rt, ok)
	}
}
