// Package reachability answers which stations a pod can be sent to from a
// given origin station.
package reachability

import (
	"fmt"
	"sort"

	"tubecraft.ai/internal/sim/world/feature/station/registry"
	"tubecraft.ai/internal/sim/world/feature/tube/junction"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

type Mode string

const (
	// ModeRegistry lists every other registered station.
	ModeRegistry Mode = "registry"
	// ModeTopology lists stations whose docked chains connect to the
	// origin's through junctions.
	ModeTopology Mode = "topology"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRegistry:
		return ModeRegistry, nil
	case ModeTopology:
		return ModeTopology, nil
	default:
		return "", fmt.Errorf("unknown reachability mode %q", s)
	}
}

type Stations interface {
	Lookup(name string) (modelpkg.Station, bool)
	Names() []string
}

type Grid interface {
	Cell(p modelpkg.Vec3i) modelpkg.Cell
	Kind(p modelpkg.Vec3i) modelpkg.Kind
}

type RouteTable interface {
	Routes(p modelpkg.Vec3i) []junction.Route
}

type Finder struct {
	mode     Mode
	stations Stations
	grid     Grid
	routes   RouteTable
}

// New builds a finder. grid and routes are only consulted in ModeTopology
// and may be nil otherwise.
func New(mode Mode, stations Stations, grid Grid, routes RouteTable) *Finder {
	if mode == "" {
		mode = ModeRegistry
	}
	return &Finder{mode: mode, stations: stations, grid: grid, routes: routes}
}

func (f *Finder) Mode() Mode { return f.mode }

// Reachable returns the destinations of origin in lexicographic order,
// never including origin itself.
func (f *Finder) Reachable(origin string) ([]string, error) {
	st, ok := f.stations.Lookup(origin)
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrUnknownStation, origin)
	}
	if f.mode != ModeTopology || f.grid == nil || f.routes == nil {
		return f.others(origin), nil
	}
	return f.connected(st), nil
}

func (f *Finder) others(origin string) []string {
	names := f.stations.Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != origin {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func (f *Finder) connected(origin modelpkg.Station) []string {
	seen := f.walk(f.dockedEnds(origin.Pos))
	out := []string{}
	for _, n := range f.stations.Names() {
		if n == origin.Name {
			continue
		}
		st, ok := f.stations.Lookup(n)
		if !ok {
			continue
		}
		for _, e := range f.dockedEnds(st.Pos) {
			if seen[e] {
				out = append(out, n)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// dockedEnds lists the chain ends face-adjacent to a station block.
func (f *Finder) dockedEnds(pos modelpkg.Vec3i) []modelpkg.Vec3i {
	var out []modelpkg.Vec3i
	for _, n := range modelpkg.Neighbors6(pos) {
		if f.grid.Kind(n).IsEnd() {
			out = append(out, n)
		}
	}
	return out
}

// walk floods chain ends and junctions from start. Chains are crossed in one
// hop through the peer pointer; junctions fan out over their route tables.
func (f *Finder) walk(start []modelpkg.Vec3i) map[modelpkg.Vec3i]bool {
	seen := map[modelpkg.Vec3i]bool{}
	queue := append([]modelpkg.Vec3i(nil), start...)
	for _, p := range start {
		seen[p] = true
	}
	push := func(p modelpkg.Vec3i) {
		if !seen[p] {
			seen[p] = true
			queue = append(queue, p)
		}
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		c := f.grid.Cell(p)
		switch {
		case c.Kind == modelpkg.KindJunction:
			for _, rt := range f.routes.Routes(p) {
				push(rt.Entry)
				push(rt.Exit)
			}
		case c.Kind.IsEnd():
			if c.HasPeer {
				push(c.Peer)
			}
			for _, n := range modelpkg.Neighbors6(p) {
				if f.grid.Kind(n) == modelpkg.KindJunction {
					push(n)
				}
			}
		}
	}
	return seen
}
