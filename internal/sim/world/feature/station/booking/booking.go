// Package booking records pending pod trips between stations and opens the
// origin's pod door when a trip is booked.
package booking

import (
	"errors"
	"fmt"
	"sort"

	"tubecraft.ai/internal/sim/world/feature/station/registry"
	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

var ErrInvalidIndex = errors.New("destination index out of range")

type Stations interface {
	Lookup(name string) (modelpkg.Station, bool)
}

type Reachability interface {
	Reachable(origin string) ([]string, error)
}

// Door opens the pod bay of a station.
type Door interface {
	OpenPodDoor(station string)
}

// DoorFunc adapts a function to Door.
type DoorFunc func(station string)

func (f DoorFunc) OpenPodDoor(station string) { f(station) }

type Service struct {
	stations Stations
	reach    Reachability
	door     Door

	pending map[string]modelpkg.PendingBooking
	seq     uint64
}

func New(stations Stations, reach Reachability, door Door) *Service {
	return &Service{
		stations: stations,
		reach:    reach,
		door:     door,
		pending:  map[string]modelpkg.PendingBooking{},
	}
}

// Book picks the index-th destination (1-based) of the current reachable
// list of station, stores it as the pending trip and opens the door. A
// previous pending trip of the same station is replaced.
func (s *Service) Book(station string, index int) (modelpkg.PendingBooking, error) {
	if _, ok := s.stations.Lookup(station); !ok {
		return modelpkg.PendingBooking{}, fmt.Errorf("%w: %q", registry.ErrUnknownStation, station)
	}
	dests, err := s.reach.Reachable(station)
	if err != nil {
		return modelpkg.PendingBooking{}, err
	}
	if index < 1 || index > len(dests) {
		return modelpkg.PendingBooking{}, fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidIndex, index, len(dests))
	}
	s.seq++
	pb := modelpkg.PendingBooking{Origin: station, Destination: dests[index-1], Seq: s.seq}
	s.pending[station] = pb
	if s.door != nil {
		s.door.OpenPodDoor(station)
	}
	return pb, nil
}

func (s *Service) Pending(station string) (modelpkg.PendingBooking, bool) {
	pb, ok := s.pending[station]
	return pb, ok
}

// Depart consumes the pending trip of station, if any.
func (s *Service) Depart(station string) (modelpkg.PendingBooking, bool) {
	pb, ok := s.pending[station]
	if ok {
		delete(s.pending, station)
	}
	return pb, ok
}

// Drop removes every pending trip from or to station and returns how many
// were removed.
func (s *Service) Drop(station string) int {
	n := 0
	for origin, pb := range s.pending {
		if origin == station || pb.Destination == station {
			delete(s.pending, origin)
			n++
		}
	}
	return n
}

// All returns the pending trips ordered by origin.
func (s *Service) All() []modelpkg.PendingBooking {
	out := make([]modelpkg.PendingBooking, 0, len(s.pending))
	for _, pb := range s.pending {
		out = append(out, pb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Origin < out[j].Origin })
	return out
}

func (s *Service) Seq() uint64 { return s.seq }

// Restore reloads trips and the sequence counter from a snapshot.
func (s *Service) Restore(seq uint64, trips []modelpkg.PendingBooking) {
	s.pending = make(map[string]modelpkg.PendingBooking, len(trips))
	for _, pb := range trips {
		s.pending[pb.Origin] = pb
		if pb.Seq > seq {
			seq = pb.Seq
		}
	}
	s.seq = seq
}
