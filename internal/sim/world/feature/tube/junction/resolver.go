// Package junction keeps per-junction routing tables: for each side of a
// junction cell, which chain docks there and where that chain leads.
package junction

import (
	"sort"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

type Grid interface {
	Cell(p modelpkg.Vec3i) modelpkg.Cell
	Kind(p modelpkg.Vec3i) modelpkg.Kind
}

// Route describes one incident chain of a junction.
type Route struct {
	Dir   modelpkg.Vec3i // offset from the junction to Entry
	Entry modelpkg.Vec3i // chain end touching the junction
	Exit  modelpkg.Vec3i // opposite end of that chain
	// Onward is the junction docked at Exit, if any.
	Onward    modelpkg.Vec3i
	HasOnward bool
}

type Resolver struct {
	grid   Grid
	routes map[modelpkg.Vec3i][]Route
}

func New(grid Grid) *Resolver {
	return &Resolver{grid: grid, routes: map[modelpkg.Vec3i][]Route{}}
}

// UpdateJunction recomputes the table of p when p is a junction, otherwise
// the tables of every junction adjacent to p.
func (r *Resolver) UpdateJunction(p modelpkg.Vec3i) {
	if r.grid.Kind(p) == modelpkg.KindJunction {
		r.recompute(p)
		return
	}
	delete(r.routes, p)
	for _, n := range modelpkg.Neighbors6(p) {
		if r.grid.Kind(n) == modelpkg.KindJunction {
			r.recompute(n)
		}
	}
}

func (r *Resolver) Forget(p modelpkg.Vec3i) { delete(r.routes, p) }

func (r *Resolver) recompute(j modelpkg.Vec3i) {
	routes := make([]Route, 0, 6)
	for _, d := range modelpkg.AxisDirs {
		entry := j.Add(d)
		c := r.grid.Cell(entry)
		if !c.Kind.IsEnd() {
			continue
		}
		exit := entry
		if c.HasPeer {
			exit = c.Peer
		}
		rt := Route{Dir: d, Entry: entry, Exit: exit}
		for _, n := range modelpkg.Neighbors6(exit) {
			if n != j && r.grid.Kind(n) == modelpkg.KindJunction {
				rt.Onward, rt.HasOnward = n, true
				break
			}
		}
		routes = append(routes, rt)
	}
	r.routes[j] = routes
}

// Forms reports whether p is a junction where three or more chains meet.
func (r *Resolver) Forms(p modelpkg.Vec3i) bool {
	if r.grid.Kind(p) != modelpkg.KindJunction {
		return false
	}
	return len(r.routes[p]) >= 3
}

// Routes returns a copy of the table of junction p, ordered by direction.
func (r *Resolver) Routes(p modelpkg.Vec3i) []Route {
	rs := r.routes[p]
	if len(rs) == 0 {
		return nil
	}
	out := make([]Route, len(rs))
	copy(out, rs)
	return out
}

// Next picks the route leaving junction j through the side facing dir.
func (r *Resolver) Next(j, dir modelpkg.Vec3i) (Route, bool) {
	for _, rt := range r.routes[j] {
		if rt.Dir == dir {
			return rt, true
		}
	}
	return Route{}, false
}

// Junctions lists every junction with a table, ordered by position.
func (r *Resolver) Junctions() []modelpkg.Vec3i {
	out := make([]modelpkg.Vec3i, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Rebuild recomputes every table from scratch, e.g. after loading a snapshot.
func (r *Resolver) Rebuild(forEach func(fn func(p modelpkg.Vec3i, c modelpkg.Cell))) {
	r.routes = map[modelpkg.Vec3i][]Route{}
	forEach(func(p modelpkg.Vec3i, c modelpkg.Cell) {
		if c.Kind == modelpkg.KindJunction {
			r.recompute(p)
		}
	})
}
