package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Seq uint64 `json:"seq"`

	Cells        int `json:"cells"`
	LoadedChunks int `json:"loaded_chunks"`
	Junctions    int `json:"junctions"`
	Stations     int `json:"stations"`
	Pending      int `json:"pending_bookings"`
	OpenForms    int `json:"open_forms"`
	Subscribers  int `json:"subscribers"`

	QueueDepths QueueDepths `json:"queue_depths"`
	Counters    Counters    `json:"counters"`

	Digest string `json:"digest"`
}

type QueueDepths struct {
	Inbox     int `json:"inbox"`
	Subscribe int `json:"subscribe"`
	Admin     int `json:"admin"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) publishMetrics() {
	w.metrics.Store(WorldMetrics{
		Seq:          w.seq.Load(),
		Cells:        w.grid.CellCount(),
		LoadedChunks: len(w.grid.Chunks),
		Junctions:    len(w.junctions.Junctions()),
		Stations:     w.stations.Len(),
		Pending:      len(w.bookings.All()),
		OpenForms:    len(w.forms),
		Subscribers:  len(w.subs),
		QueueDepths: QueueDepths{
			Inbox:     len(w.inbox),
			Subscribe: len(w.subscribe),
			Admin:     len(w.admin),
		},
		Counters: w.counters,
		Digest:   w.stateDigest(),
	})
}
