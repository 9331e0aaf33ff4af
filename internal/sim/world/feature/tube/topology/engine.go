// Package topology maintains tube chains as blocks are placed and removed.
//
// A chain is a run of face-adjacent tube cells. Its two ends are Head cells
// (or one Single cell for a chain of length one) whose Peer fields point at
// each other; everything between them is Link filler. Placement and removal
// keep that invariant without global recomputation.
package topology

import (
	"errors"
	"fmt"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

var ErrInvalidPlacement = errors.New("invalid tube placement")

// Grid is the voxel storage the engine reads and writes.
type Grid interface {
	Cell(p modelpkg.Vec3i) modelpkg.Cell
	SetCell(p modelpkg.Vec3i, c modelpkg.Cell)
	Kind(p modelpkg.Vec3i) modelpkg.Kind
	ForEach(fn func(p modelpkg.Vec3i, c modelpkg.Cell))
}

// JunctionUpdater is told about every cell whose peer pointer (or presence)
// changed so it can refresh the junctions that depend on it.
type JunctionUpdater interface {
	UpdateJunction(p modelpkg.Vec3i)
	Forget(p modelpkg.Vec3i)
}

type Engine struct {
	grid      Grid
	junctions JunctionUpdater
}

func New(grid Grid, junctions JunctionUpdater) *Engine {
	return &Engine{grid: grid, junctions: junctions}
}

// OnSegmentPlaced links a freshly written tube cell into the topology. The
// grid must already hold the raw cell: KindSingle for tube, KindJunction for
// a connector. On error the cell is reverted to empty and nothing else has
// been written.
func (e *Engine) OnSegmentPlaced(p modelpkg.Vec3i) error {
	switch e.grid.Kind(p) {
	case modelpkg.KindJunction:
		return e.placeJunction(p)
	case modelpkg.KindSingle:
		return e.placeSegment(p)
	default:
		return fmt.Errorf("%w: %v is not a raw tube cell", ErrInvalidPlacement, p)
	}
}

func (e *Engine) placeSegment(p modelpkg.Vec3i) error {
	cls := e.Classify(p)
	switch cls.Class {
	case ClassIsolated:
		e.setKind(p, modelpkg.KindSingle)
		e.relink(p, p)
	case ClassExtend:
		end := cls.Ends[0]
		far := e.far(end)
		e.demote(end)
		e.setKind(p, modelpkg.KindHead)
		e.relink(p, far)
		e.relink(far, p)
	case ClassBridge:
		f1 := e.far(cls.Ends[0])
		f2 := e.far(cls.Ends[1])
		e.demote(cls.Ends[0])
		e.demote(cls.Ends[1])
		e.setKind(p, modelpkg.KindLink)
		e.relink(f1, f2)
		e.relink(f2, f1)
	default:
		e.grid.SetCell(p, modelpkg.Cell{})
		return fmt.Errorf("%w at %v: %s", ErrInvalidPlacement, p, cls.Reason)
	}
	return nil
}

func (e *Engine) placeJunction(p modelpkg.Vec3i) error {
	var ends []modelpkg.Vec3i
	for _, n := range modelpkg.Neighbors6(p) {
		switch e.grid.Kind(n) {
		case modelpkg.KindLink:
			e.grid.SetCell(p, modelpkg.Cell{})
			return fmt.Errorf("%w at %v: junction touches the middle of a chain", ErrInvalidPlacement, p)
		case modelpkg.KindJunction:
			e.grid.SetCell(p, modelpkg.Cell{})
			return fmt.Errorf("%w at %v: junctions cannot touch", ErrInvalidPlacement, p)
		case modelpkg.KindSingle, modelpkg.KindHead:
			if e.dockCount(n, p) >= dockCapacity(e.grid.Kind(n)) {
				e.grid.SetCell(p, modelpkg.Cell{})
				return fmt.Errorf("%w at %v: chain end %v has no free side", ErrInvalidPlacement, p, n)
			}
			ends = append(ends, n)
		}
	}
	e.setKind(p, modelpkg.KindJunction)
	e.junctions.UpdateJunction(p)
	for _, n := range ends {
		e.junctions.UpdateJunction(e.far(n))
	}
	return nil
}

// OnSegmentRemoved repairs the topology after the grid cleared p. former is
// the cell that occupied p before removal.
func (e *Engine) OnSegmentRemoved(p modelpkg.Vec3i, former modelpkg.Cell) {
	switch former.Kind {
	case modelpkg.KindSingle:
	case modelpkg.KindHead:
		far := former.Peer
		for _, c := range e.chainNeighbors(p) {
			if c == far {
				e.promote(c)
				e.relink(c, c)
			} else {
				e.promote(c)
				e.relink(c, far)
				e.relink(far, c)
			}
		}
	case modelpkg.KindLink:
		for _, c := range e.chainNeighbors(p) {
			end := e.walkToEnd(c, p)
			if c == end {
				e.promote(c)
				e.relink(c, c)
				continue
			}
			e.promote(c)
			e.relink(c, end)
			e.relink(end, c)
		}
	case modelpkg.KindJunction:
		e.junctions.Forget(p)
		for _, n := range modelpkg.Neighbors6(p) {
			if e.grid.Kind(n).IsEnd() {
				e.junctions.UpdateJunction(e.far(n))
			}
		}
	}
	e.junctions.UpdateJunction(p)
}

// CanRemove reports whether a player may dig the cell at p.
func (e *Engine) CanRemove(p modelpkg.Vec3i) bool {
	c := e.grid.Cell(p)
	return c.Kind.IsTube() && c.Diggable
}

func (e *Engine) relink(p, peer modelpkg.Vec3i) {
	c := e.grid.Cell(p)
	c.Peer = peer
	c.HasPeer = true
	e.grid.SetCell(p, c)
	e.junctions.UpdateJunction(p)
}

func (e *Engine) setKind(p modelpkg.Vec3i, k modelpkg.Kind) {
	c := e.grid.Cell(p)
	c.Kind = k
	c.Diggable = k != modelpkg.KindLink
	if !k.IsEnd() {
		c.Peer = modelpkg.Vec3i{}
		c.HasPeer = false
	}
	e.grid.SetCell(p, c)
}

func (e *Engine) demote(p modelpkg.Vec3i) {
	switch e.grid.Kind(p) {
	case modelpkg.KindSingle:
		e.setKind(p, modelpkg.KindHead)
	case modelpkg.KindHead:
		e.setKind(p, modelpkg.KindLink)
	}
}

func (e *Engine) promote(p modelpkg.Vec3i) {
	switch e.grid.Kind(p) {
	case modelpkg.KindLink:
		e.setKind(p, modelpkg.KindHead)
	case modelpkg.KindHead:
		e.setKind(p, modelpkg.KindSingle)
	}
}

// far returns the opposite end of the chain that ends at p.
func (e *Engine) far(p modelpkg.Vec3i) modelpkg.Vec3i {
	c := e.grid.Cell(p)
	if c.HasPeer {
		return c.Peer
	}
	return p
}

func (e *Engine) chainNeighbors(p modelpkg.Vec3i) []modelpkg.Vec3i {
	var out []modelpkg.Vec3i
	for _, n := range modelpkg.Neighbors6(p) {
		if e.grid.Kind(n).IsChain() {
			out = append(out, n)
		}
	}
	return out
}

// dockCount counts junctions touching p, ignoring skip.
func (e *Engine) dockCount(p, skip modelpkg.Vec3i) int {
	n := 0
	for _, q := range modelpkg.Neighbors6(p) {
		if q != skip && e.grid.Kind(q) == modelpkg.KindJunction {
			n++
		}
	}
	return n
}

// dockCapacity is how many junctions an end of kind k may touch while keeping
// at most two tube neighbours.
func dockCapacity(k modelpkg.Kind) int {
	if k == modelpkg.KindSingle {
		return 2
	}
	return 1
}

// walkToEnd follows the chain from start, moving away from prev, until it
// reaches a Single or Head.
func (e *Engine) walkToEnd(start, prev modelpkg.Vec3i) modelpkg.Vec3i {
	cur := start
	for steps := 0; steps < maxWalk; steps++ {
		if e.grid.Kind(cur).IsEnd() {
			return cur
		}
		next, ok := modelpkg.Vec3i{}, false
		for _, n := range e.chainNeighbors(cur) {
			if n != prev {
				next, ok = n, true
				break
			}
		}
		if !ok {
			return cur
		}
		prev, cur = cur, next
	}
	return cur
}

const maxWalk = 1 << 20
