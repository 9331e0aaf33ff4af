package world

import (
	"encoding/json"

	"tubecraft.ai/internal/protocol"
)

// openPodDoor is the booking door: it queues a POD_DOOR_OPEN event that is
// broadcast once the current action has finished.
func (w *World) openPodDoor(station string) {
	ev := protocol.Event{"type": "POD_DOOR_OPEN", "station": station}
	if st, ok := w.stations.Lookup(station); ok {
		ev["pos"] = st.Pos.ToArray()
	}
	w.pendingEvents = append(w.pendingEvents, ev)
}

func (w *World) emit(ev protocol.Event) {
	w.pendingEvents = append(w.pendingEvents, ev)
}

func (w *World) flushEvents() {
	if len(w.pendingEvents) == 0 {
		return
	}
	seq := w.seq.Load()
	for _, ev := range w.pendingEvents {
		if len(w.subs) == 0 {
			break
		}
		b, err := json.Marshal(protocol.EventMsg{
			Type:            protocol.TypeEvent,
			ProtocolVersion: protocol.Version,
			Seq:             seq,
			Event:           ev,
		})
		if err != nil {
			continue
		}
		for _, out := range w.subs {
			sendLatest(out, b)
		}
	}
	w.pendingEvents = w.pendingEvents[:0]
}
