package world

import (
	"fmt"

	"github.com/google/uuid"

	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/catalogs"
	"tubecraft.ai/internal/sim/world/feature/station/booking"
	"tubecraft.ai/internal/sim/world/feature/station/registry"
)

// openForm is a terminal form handed to a player and not yet submitted.
type openForm struct {
	ID       string
	Kind     string
	Player   string
	Terminal Vec3i
	Station  string
}

func (w *World) openTerminal(actor string, pos Vec3i) (protocol.FormMsg, error) {
	c := w.grid.Cell(pos)
	if c.IsZero() || w.catalogs.Blocks.Role(c.Block) != catalogs.RoleTerminal {
		return protocol.FormMsg{}, reject(protocol.ErrInvalidTarget, "no booking terminal at %v", pos)
	}

	var form booking.Form
	station := ""
	if st, ok := w.stations.ByTerminal(pos); ok {
		f, err := w.bookings.RenderBookingForm(st.Name)
		if err != nil {
			return protocol.FormMsg{}, err
		}
		form, station = f, st.Name
	} else {
		form = booking.RenderBindingForm()
	}

	of := &openForm{
		ID:       uuid.NewString(),
		Kind:     form.Kind,
		Player:   actor,
		Terminal: pos,
		Station:  station,
	}
	w.trackForm(of)

	msg := protocol.FormMsg{
		Type:    protocol.TypeForm,
		FormID:  of.ID,
		Kind:    form.Kind,
		Station: station,
		Rows:    toFormRows(form.Rows),
	}
	for _, f := range form.Fields {
		msg.Fields = append(msg.Fields, protocol.FormField{Name: f.Name, Label: f.Label})
	}
	return msg, nil
}

// trackForm remembers of, evicting the oldest open forms past the limit.
func (w *World) trackForm(of *openForm) {
	w.forms[of.ID] = of
	w.formOrder = append(w.formOrder, of.ID)
	for len(w.forms) > w.cfg.MaxOpenForms && len(w.formOrder) > 0 {
		oldest := w.formOrder[0]
		w.formOrder = w.formOrder[1:]
		delete(w.forms, oldest)
	}
}

func (w *World) takeForm(id string) (*openForm, bool) {
	of, ok := w.forms[id]
	if !ok {
		return nil, false
	}
	delete(w.forms, id)
	for i, fid := range w.formOrder {
		if fid == id {
			w.formOrder = append(w.formOrder[:i], w.formOrder[i+1:]...)
			break
		}
	}
	return of, true
}

// dropFormsFor forgets forms of a removed station, or of the terminal at
// pos when byTerminal is set.
func (w *World) dropFormsFor(station string, pos Vec3i, byTerminal bool) {
	for id, of := range w.forms {
		if (byTerminal && of.Terminal == pos) || (!byTerminal && of.Station == station) {
			w.takeForm(id)
		}
	}
}

// submitForm runs a submission against an open form. The form is consumed
// only when the bind or booking it carries succeeds.
func (w *World) submitForm(actor, formID string, fields map[string]string) (any, error) {
	of, ok := w.forms[formID]
	if !ok || of.Player != actor {
		return nil, reject(protocol.ErrInvalidTarget, "form %q is not open", formID)
	}
	sub, err := booking.DecodeSubmission(of.Kind, fields)
	if err != nil {
		return nil, reject(protocol.ErrBadRequest, "%v", err)
	}
	var out any
	switch s := sub.(type) {
	case booking.BindSubmission:
		out, err = w.bind(actor, of.Terminal, s)
	case booking.BookingSubmission:
		st, ok := w.stations.ByTerminal(of.Terminal)
		if !ok || st.Name != of.Station {
			return nil, reject(protocol.ErrInvalidTarget, "terminal at %v is no longer bound to %q", of.Terminal, of.Station)
		}
		out, err = w.book(actor, st.Name, s.Index)
	default:
		return nil, reject(protocol.ErrBadRequest, "unsupported submission %T", sub)
	}
	if err != nil {
		return nil, err
	}
	w.takeForm(formID)
	return out, nil
}

func (w *World) bind(actor string, terminal Vec3i, s booking.BindSubmission) (any, error) {
	c := w.grid.Cell(terminal)
	if c.IsZero() || w.catalogs.Blocks.Role(c.Block) != catalogs.RoleTerminal {
		return nil, reject(protocol.ErrInvalidTarget, "booking terminal at %v is gone", terminal)
	}
	if st, ok := w.stations.ByTerminal(terminal); ok {
		return nil, fmt.Errorf("%w: terminal already serves %q", registry.ErrAlreadyBound, st.Name)
	}
	if err := w.stations.BindBooking(s.Name, terminal, s.Info); err != nil {
		return nil, err
	}
	w.audit(AuditEntry{
		Seq:     w.nextSeq(),
		Actor:   actor,
		Action:  "BIND_TERMINAL",
		Pos:     terminal.ToArray(),
		Station: s.Name,
	})
	st, _ := w.stations.Lookup(s.Name)
	return stationView(st, ""), nil
}

func (w *World) book(actor, station string, index int) (PendingBooking, error) {
	pb, err := w.bookings.Book(station, index)
	if err != nil {
		return PendingBooking{}, err
	}
	w.counters.Bookings++
	st, _ := w.stations.Lookup(station)
	w.audit(AuditEntry{
		Seq:         w.nextSeq(),
		Actor:       actor,
		Action:      "BOOK",
		Pos:         st.Pos.ToArray(),
		Station:     station,
		Destination: pb.Destination,
	})
	return pb, nil
}

func (w *World) depart(actor, station string) (PendingBooking, error) {
	st, ok := w.stations.Lookup(station)
	if !ok {
		return PendingBooking{}, fmt.Errorf("%w: %q", registry.ErrUnknownStation, station)
	}
	pb, ok := w.bookings.Depart(station)
	if !ok {
		return PendingBooking{}, reject(protocol.ErrConflict, "no pending booking at %q", station)
	}
	w.counters.Departures++
	w.audit(AuditEntry{
		Seq:         w.nextSeq(),
		Actor:       actor,
		Action:      "DEPART",
		Pos:         st.Pos.ToArray(),
		Station:     station,
		Destination: pb.Destination,
	})
	w.emit(protocol.Event{"type": "POD_DEPARTED", "station": station, "destination": pb.Destination})
	return pb, nil
}

func (w *World) listStations() []StationView {
	all := w.stations.All()
	out := make([]StationView, 0, len(all))
	for _, st := range all {
		pending := ""
		if pb, ok := w.bookings.Pending(st.Name); ok {
			pending = pb.Destination
		}
		out = append(out, stationView(st, pending))
	}
	return out
}

func stationView(st Station, pending string) StationView {
	v := StationView{Name: st.Name, Pos: st.Pos.ToArray(), Info: st.Info, Pending: pending}
	if st.HasBooking {
		bp := st.BookingPos.ToArray()
		v.BookingPos = &bp
	}
	return v
}

func toFormRows(rows []booking.Row) []protocol.FormRow {
	if len(rows) == 0 {
		return nil
	}
	out := make([]protocol.FormRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, protocol.FormRow{
			Index:        r.Index,
			Destination:  r.Destination,
			DistanceM:    r.DistanceM,
			PositionText: r.PositionText,
			Info:         r.Info,
		})
	}
	return out
}
