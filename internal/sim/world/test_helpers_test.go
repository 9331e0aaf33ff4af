package world

import (
	"testing"

	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/catalogs"
)

type memAudit struct {
	entries []AuditEntry
}

func (m *memAudit) WriteAudit(e AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func newTestWorld(t *testing.T, cfg WorldConfig) *World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if cfg.ID == "" {
		cfg.ID = "test"
	}
	if cfg.BoundaryR == 0 {
		cfg.BoundaryR = 1000
	}
	w, err := New(cfg, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func p3(x, y, z int) *[3]int { return &[3]int{x, y, z} }

func (w *World) act(player string, a protocol.ActMsg) protocol.ActResultMsg {
	if a.Type == "" {
		a.Type = protocol.TypeAct
		a.ProtocolVersion = protocol.Version
	}
	res := w.apply(ActionEnvelope{PlayerID: player, Act: a})
	w.flushEvents()
	return res
}

func mustOK(t *testing.T, r protocol.ActResultMsg) protocol.ActResultMsg {
	t.Helper()
	if !r.OK {
		t.Fatalf("action %s rejected: %s %s", r.ActID, r.Code, r.Message)
	}
	return r
}

func mustCode(t *testing.T, r protocol.ActResultMsg, code string) {
	t.Helper()
	if r.OK || r.Code != code {
		t.Fatalf("action %s: ok=%v code=%q (%s) want %s", r.ActID, r.OK, r.Code, r.Message, code)
	}
}

func place(x, y, z int, block string) protocol.ActMsg {
	return protocol.ActMsg{ID: "place", Action: protocol.ActPlaceBlock, Pos: p3(x, y, z), Block: block}
}

func placeStation(x, y, z int, name string) protocol.ActMsg {
	a := place(x, y, z, "STATION")
	a.Name = name
	return a
}

func dig(x, y, z int) protocol.ActMsg {
	return protocol.ActMsg{ID: "break", Action: protocol.ActBreakBlock, Pos: p3(x, y, z)}
}

func openTerminal(t *testing.T, w *World, player string, x, y, z int) protocol.FormMsg {
	t.Helper()
	r := mustOK(t, w.act(player, protocol.ActMsg{ID: "open", Action: protocol.ActOpenTerminal, Pos: p3(x, y, z)}))
	f, ok := r.Data.(protocol.FormMsg)
	if !ok {
		t.Fatalf("open terminal data=%T", r.Data)
	}
	return f
}

func submit(w *World, player, formID string, fields map[string]string) protocol.ActResultMsg {
	return w.act(player, protocol.ActMsg{ID: "submit", Action: protocol.ActSubmitForm, FormID: formID, Fields: fields})
}
