// Package registry is the world-scoped table of named stations and the
// booking terminals bound to them.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

// DefaultMaxBookingDistance is how far a booking terminal may sit from its station.
const DefaultMaxBookingDistance = 30

var (
	ErrEmptyName      = errors.New("station name is empty")
	ErrDuplicateName  = errors.New("station name already exists")
	ErrUnknownStation = errors.New("unknown station")
	ErrAlreadyBound   = errors.New("station already has a booking terminal")
	ErrTooFar         = errors.New("booking terminal too far from station")
)

type Registry struct {
	maxDistance float64
	stations    map[string]*modelpkg.Station
}

// New returns an empty registry. maxDistance <= 0 selects the default.
func New(maxDistance float64) *Registry {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxBookingDistance
	}
	return &Registry{maxDistance: maxDistance, stations: map[string]*modelpkg.Station{}}
}

func (r *Registry) MaxDistance() float64 { return r.maxDistance }

func (r *Registry) Register(name string, pos modelpkg.Vec3i) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := r.stations[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.stations[name] = &modelpkg.Station{Name: name, Pos: pos}
	return nil
}

// Remove drops a station whose defining structure was destroyed.
func (r *Registry) Remove(name string) bool {
	if _, ok := r.stations[name]; !ok {
		return false
	}
	delete(r.stations, name)
	return true
}

func (r *Registry) BindBooking(name string, terminal modelpkg.Vec3i, info string) error {
	st, ok := r.stations[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	if st.HasBooking {
		return fmt.Errorf("%w: %q at %v", ErrAlreadyBound, name, st.BookingPos)
	}
	if d := modelpkg.Distance(terminal, st.Pos); d > r.maxDistance {
		return fmt.Errorf("%w: %.1f > %.0f", ErrTooFar, d, r.maxDistance)
	}
	st.BookingPos = terminal
	st.HasBooking = true
	st.Info = info
	return nil
}

// UnbindBooking clears the terminal binding. It is a no-op for unknown or
// unbound stations.
func (r *Registry) UnbindBooking(name string) {
	st, ok := r.stations[name]
	if !ok {
		return
	}
	st.BookingPos = modelpkg.Vec3i{}
	st.HasBooking = false
	st.Info = ""
}

func (r *Registry) Lookup(name string) (modelpkg.Station, bool) {
	st, ok := r.stations[name]
	if !ok {
		return modelpkg.Station{}, false
	}
	return *st, true
}

// ByTerminal finds the station bound to the terminal at pos.
func (r *Registry) ByTerminal(pos modelpkg.Vec3i) (modelpkg.Station, bool) {
	for _, st := range r.stations {
		if st.HasBooking && st.BookingPos == pos {
			return *st, true
		}
	}
	return modelpkg.Station{}, false
}

// ByPosition finds the station whose structure sits at pos.
func (r *Registry) ByPosition(pos modelpkg.Vec3i) (modelpkg.Station, bool) {
	for _, st := range r.stations {
		if st.Pos == pos {
			return *st, true
		}
	}
	return modelpkg.Station{}, false
}

func (r *Registry) Len() int { return len(r.stations) }

// Names returns every station name in lexicographic order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.stations))
	for n := range r.stations {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// All returns copies of every station, ordered by name.
func (r *Registry) All() []modelpkg.Station {
	names := r.Names()
	out := make([]modelpkg.Station, 0, len(names))
	for _, n := range names {
		out = append(out, *r.stations[n])
	}
	return out
}

// Restore inserts a station verbatim, e.g. when loading a snapshot.
func (r *Registry) Restore(st modelpkg.Station) error {
	if strings.TrimSpace(st.Name) == "" {
		return ErrEmptyName
	}
	if _, ok := r.stations[st.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, st.Name)
	}
	cp := st
	r.stations[st.Name] = &cp
	return nil
}
