package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

// Row is one line of the destination list shown at a booking terminal.
type Row struct {
	Index        int    `json:"index"`
	Destination  string `json:"destination"`
	DistanceM    int    `json:"distance_m"`
	PositionText string `json:"position_text"`
	Info         string `json:"info,omitempty"`
}

type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Form is what a terminal shows when opened.
type Form struct {
	Kind    string  `json:"kind"`
	Station string  `json:"station,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
	Rows    []Row   `json:"rows,omitempty"`
}

const (
	FormBind = "BIND"
	FormBook = "BOOK"
)

// RenderStationList lists the current destinations of station.
func (s *Service) RenderStationList(station string) ([]Row, error) {
	origin, ok := s.stations.Lookup(station)
	if !ok {
		return nil, fmt.Errorf("unknown station %q", station)
	}
	dests, err := s.reach.Reachable(station)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(dests))
	for i, name := range dests {
		st, ok := s.stations.Lookup(name)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Index:        i + 1,
			Destination:  st.Name,
			DistanceM:    int(math.Round(modelpkg.Distance(origin.Pos, st.Pos))),
			PositionText: st.Pos.Text(),
			Info:         st.Info,
		})
	}
	return rows, nil
}

func (s *Service) RenderBookingForm(station string) (Form, error) {
	rows, err := s.RenderStationList(station)
	if err != nil {
		return Form{}, err
	}
	return Form{Kind: FormBook, Station: station, Rows: rows}, nil
}

// RenderBindingForm is shown by a terminal that is not bound to a station yet.
func RenderBindingForm() Form {
	return Form{
		Kind: FormBind,
		Fields: []Field{
			{Name: "name", Label: "Station name"},
			{Name: "info", Label: "Station info"},
		},
	}
}

// Submission is a decoded form submission: BindSubmission or BookingSubmission.
type Submission interface {
	isSubmission()
}

type BindSubmission struct {
	Name string
	Info string
}

type BookingSubmission struct {
	Index int
}

func (BindSubmission) isSubmission()    {}
func (BookingSubmission) isSubmission() {}

// DecodeSubmission turns the raw field map of a submitted form into its
// variant. formKind selects the variant; fields not belonging to it are ignored.
func DecodeSubmission(formKind string, fields map[string]string) (Submission, error) {
	switch formKind {
	case FormBind:
		name := strings.TrimSpace(fields["name"])
		if name == "" {
			return nil, fmt.Errorf("bind form: missing name")
		}
		return BindSubmission{Name: name, Info: strings.TrimSpace(fields["info"])}, nil
	case FormBook:
		raw, ok := fields["button_index"]
		if !ok {
			raw, ok = fields["index"]
		}
		if !ok {
			return nil, fmt.Errorf("booking form: missing button_index")
		}
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("booking form: bad button_index %q", raw)
		}
		return BookingSubmission{Index: idx}, nil
	default:
		return nil, fmt.Errorf("unknown form kind %q", formKind)
	}
}
