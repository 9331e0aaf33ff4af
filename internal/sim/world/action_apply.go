package world

import (
	"errors"
	"fmt"

	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/world/feature/station/booking"
	"tubecraft.ai/internal/sim/world/feature/station/registry"
	"tubecraft.ai/internal/sim/world/feature/tube/topology"
)

// actionError is a rejection with an explicit wire code.
type actionError struct {
	code string
	msg  string
}

func (e *actionError) Error() string { return e.msg }

func reject(code, format string, args ...any) error {
	return &actionError{code: code, msg: fmt.Sprintf(format, args...)}
}

// codeFor maps domain errors to wire codes.
func codeFor(err error) string {
	var ae *actionError
	switch {
	case errors.As(err, &ae):
		return ae.code
	case errors.Is(err, topology.ErrInvalidPlacement):
		return protocol.ErrInvalidPlacement
	case errors.Is(err, registry.ErrDuplicateName):
		return protocol.ErrDuplicateName
	case errors.Is(err, registry.ErrUnknownStation):
		return protocol.ErrUnknownStation
	case errors.Is(err, registry.ErrAlreadyBound):
		return protocol.ErrAlreadyBound
	case errors.Is(err, registry.ErrTooFar):
		return protocol.ErrTooFar
	case errors.Is(err, registry.ErrEmptyName):
		return protocol.ErrBadRequest
	case errors.Is(err, booking.ErrInvalidIndex):
		return protocol.ErrInvalidIndex
	default:
		return protocol.ErrInternal
	}
}

func (w *World) apply(env ActionEnvelope) protocol.ActResultMsg {
	res := protocol.ActResultMsg{
		Type:            protocol.TypeActResult,
		ProtocolVersion: protocol.Version,
		ActID:           env.Act.ID,
	}
	data, mutated, err := w.dispatch(env)
	if err != nil {
		w.counters.Rejections++
		res.Code = codeFor(err)
		res.Message = err.Error()
		return res
	}
	if mutated {
		w.actionsSinceSnapshot++
	}
	res.OK = true
	res.Seq = w.seq.Load()
	res.Data = data
	return res
}

func (w *World) dispatch(env ActionEnvelope) (data any, mutated bool, err error) {
	a := env.Act
	switch a.Action {
	case protocol.ActPlaceBlock:
		pos, err := actPos(a)
		if err != nil {
			return nil, false, err
		}
		return nil, true, w.placeBlock(env.PlayerID, pos, a.Block, a.Name)
	case protocol.ActBreakBlock:
		pos, err := actPos(a)
		if err != nil {
			return nil, false, err
		}
		return nil, true, w.breakBlock(env.PlayerID, pos, a.Force && env.Admin, env.Admin)
	case protocol.ActOpenTerminal:
		pos, err := actPos(a)
		if err != nil {
			return nil, false, err
		}
		form, err := w.openTerminal(env.PlayerID, pos)
		return form, false, err
	case protocol.ActSubmitForm:
		data, err := w.submitForm(env.PlayerID, a.FormID, a.Fields)
		return data, err == nil, err
	case protocol.ActBook:
		pb, err := w.book(env.PlayerID, a.Station, a.Index)
		return pb, err == nil, err
	case protocol.ActDepart:
		pb, err := w.depart(env.PlayerID, a.Station)
		return pb, err == nil, err
	case protocol.ActListStations:
		return w.listStations(), false, nil
	case protocol.ActStationDestinations:
		rows, err := w.bookings.RenderStationList(a.Station)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %q", registry.ErrUnknownStation, a.Station)
		}
		return toFormRows(rows), false, nil
	default:
		return nil, false, reject(protocol.ErrBadRequest, "unknown action %q", a.Action)
	}
}

func actPos(a protocol.ActMsg) (Vec3i, error) {
	if a.Pos == nil {
		return Vec3i{}, reject(protocol.ErrBadRequest, "%s requires pos", a.Action)
	}
	return Vec3i{X: a.Pos[0], Y: a.Pos[1], Z: a.Pos[2]}, nil
}

func (w *World) nextSeq() uint64 { return w.seq.Add(1) }

func (w *World) audit(e AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(e)
}
