package topology

import (
	"fmt"
	"sort"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

// Chain is identified by its two ends, A ordered before B. A lone Single has A == B.
type Chain struct {
	A modelpkg.Vec3i
	B modelpkg.Vec3i
}

// Chains lists every chain in the grid in deterministic order.
func (e *Engine) Chains() []Chain {
	var out []Chain
	e.grid.ForEach(func(p modelpkg.Vec3i, c modelpkg.Cell) {
		if !c.Kind.IsEnd() || !c.HasPeer {
			return
		}
		if c.Peer == p || p.Less(c.Peer) {
			out = append(out, Chain{A: p, B: c.Peer})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A.Less(out[j].A)
		}
		return out[i].B.Less(out[j].B)
	})
	return out
}

// Trace returns the cells of the chain that ends at end, starting there.
func (e *Engine) Trace(end modelpkg.Vec3i) ([]modelpkg.Vec3i, error) {
	c := e.grid.Cell(end)
	if !c.Kind.IsEnd() {
		return nil, fmt.Errorf("trace: %v is %s, not a chain end", end, c.Kind)
	}
	out := []modelpkg.Vec3i{end}
	if c.Kind == modelpkg.KindSingle {
		return out, nil
	}
	prev, cur := end, end
	for steps := 0; steps < maxWalk; steps++ {
		next, ok := modelpkg.Vec3i{}, false
		for _, n := range e.chainNeighbors(cur) {
			if n != prev {
				next, ok = n, true
				break
			}
		}
		if !ok {
			break
		}
		out = append(out, next)
		if e.grid.Kind(next).IsEnd() {
			return out, nil
		}
		prev, cur = cur, next
	}
	return nil, fmt.Errorf("trace: chain from %v does not terminate", end)
}

// Verify checks the chain invariants over the whole grid: symmetric peers,
// Links with exactly two tube neighbours, junction docking within each end's
// capacity, and each Head's peer reachable by walking the chain.
func (e *Engine) Verify() error {
	var firstErr error
	fail := func(format string, args ...any) {
		if firstErr == nil {
			firstErr = fmt.Errorf("topology: "+format, args...)
		}
	}
	e.grid.ForEach(func(p modelpkg.Vec3i, c modelpkg.Cell) {
		if firstErr != nil {
			return
		}
		tubes := 0
		chains := 0
		for _, n := range modelpkg.Neighbors6(p) {
			k := e.grid.Kind(n)
			if k.IsTube() {
				tubes++
			}
			if k.IsChain() {
				chains++
			}
		}
		if c.Kind.IsEnd() {
			if d := e.dockCount(p, p); d > dockCapacity(c.Kind) {
				fail("%s %v docks %d junctions", c.Kind, p, d)
				return
			}
		}
		switch c.Kind {
		case modelpkg.KindLink:
			if tubes != 2 || chains != 2 {
				fail("link %v has %d tube neighbours", p, tubes)
			}
			if c.Diggable {
				fail("link %v is diggable", p)
			}
		case modelpkg.KindSingle:
			if !c.HasPeer || c.Peer != p {
				fail("single %v does not point at itself", p)
			}
			if chains != 0 {
				fail("single %v has %d chain neighbours", p, chains)
			}
		case modelpkg.KindHead:
			if !c.HasPeer {
				fail("head %v has no peer", p)
				return
			}
			back := e.grid.Cell(c.Peer)
			if back.Kind != modelpkg.KindHead || !back.HasPeer || back.Peer != p {
				fail("head %v peer %v is not symmetric", p, c.Peer)
				return
			}
			if chains != 1 || tubes > 2 {
				fail("head %v has %d chain / %d tube neighbours", p, chains, tubes)
				return
			}
			cells, err := e.Trace(p)
			if err != nil {
				fail("%v", err)
				return
			}
			if cells[len(cells)-1] != c.Peer {
				fail("head %v walks to %v, peer is %v", p, cells[len(cells)-1], c.Peer)
			}
		case modelpkg.KindJunction:
			if chains != tubes {
				fail("junction %v touches another junction", p)
			}
		}
	})
	return firstErr
}
