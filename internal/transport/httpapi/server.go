package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tubecraft.ai/internal/persistence/indexdb"
	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/world"
)

// BookingHistory is the read-model query surface used by the history route.
type BookingHistory interface {
	BookingsFrom(ctx context.Context, origin string, limit int) ([]indexdb.BookingRow, error)
}

type Options struct {
	// EnableAdmin mounts the loopback-only /admin/v1 routes.
	EnableAdmin bool
	// History is optional; without it the history route answers 404.
	History BookingHistory
	// WS serves /v1/ws when set.
	WS http.Handler
}

type Server struct {
	world *world.World
	log   *log.Logger
	opts  Options
}

// New constructs the HTTP router wired to the world loop.
func New(w *world.World, logger *log.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{world: w, log: logger, opts: opts}
	r := chi.NewRouter()

	r.Get("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	r.Get("/metrics", s.handleMetrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stations", s.handleStations)
		r.Get("/stations/{name}/destinations", s.handleDestinations)
		r.Post("/stations/{name}/bookings", s.handleBook)
		r.Post("/stations/{name}/depart", s.handleDepart)
		r.Get("/stations/{name}/history", s.handleHistory)
		if opts.WS != nil {
			r.Handle("/ws", opts.WS)
		}
	})

	if opts.EnableAdmin {
		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(loopbackOnly)
			r.Get("/state", s.handleAdminState)
			r.Post("/snapshot", s.handleAdminSnapshot)
		})
	}
	return r
}

func (s *Server) handleStations(rw http.ResponseWriter, r *http.Request) {
	s.submit(rw, r, protocol.ActMsg{Action: protocol.ActListStations})
}

func (s *Server) handleDestinations(rw http.ResponseWriter, r *http.Request) {
	s.submit(rw, r, protocol.ActMsg{Action: protocol.ActStationDestinations, Station: chi.URLParam(r, "name")})
}

func (s *Server) handleBook(rw http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "bad request")
		return
	}
	s.submit(rw, r, protocol.ActMsg{Action: protocol.ActBook, Station: chi.URLParam(r, "name"), Index: req.Index})
}

func (s *Server) handleDepart(rw http.ResponseWriter, r *http.Request) {
	s.submit(rw, r, protocol.ActMsg{Action: protocol.ActDepart, Station: chi.URLParam(r, "name")})
}

func (s *Server) handleHistory(rw http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeJSONError(rw, http.StatusNotFound, protocol.ErrBadRequest, "booking history disabled")
		return
	}
	rows, err := s.opts.History.BookingsFrom(r.Context(), chi.URLParam(r, "name"), 50)
	if err != nil {
		s.log.Printf("booking history: %v", err)
		writeJSONError(rw, http.StatusInternalServerError, protocol.ErrInternal, "history unavailable")
		return
	}
	if rows == nil {
		rows = []indexdb.BookingRow{}
	}
	writeJSON(rw, http.StatusOK, rows)
}

// submit runs act through the world loop on behalf of the caller named by
// the X-Player-ID header.
func (s *Server) submit(rw http.ResponseWriter, r *http.Request, act protocol.ActMsg) {
	act.Type = protocol.TypeAct
	act.ProtocolVersion = protocol.Version
	act.ID = "http-" + act.Action
	player := strings.TrimSpace(r.Header.Get("X-Player-ID"))
	if player == "" {
		player = "http"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := s.world.Submit(ctx, player, false, act)
	if err != nil {
		writeJSONError(rw, http.StatusServiceUnavailable, protocol.ErrWorldBusy, err.Error())
		return
	}
	if !res.OK && res.Code != "" {
		writeJSONError(rw, statusFor(res.Code), res.Code, res.Message)
		return
	}
	writeJSON(rw, http.StatusOK, res.Data)
}

func statusFor(code string) int {
	switch code {
	case protocol.ErrUnknownStation:
		return http.StatusNotFound
	case protocol.ErrConflict, protocol.ErrDuplicateName, protocol.ErrAlreadyBound:
		return http.StatusConflict
	case protocol.ErrNoPermission:
		return http.StatusForbidden
	case protocol.ErrWorldBusy:
		return http.StatusServiceUnavailable
	case protocol.ErrInternal:
		return http.StatusInternalServerError
	case protocol.ErrTooFar, protocol.ErrInvalidPlacement, protocol.ErrInvalidTarget:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
	m := s.world.Metrics()
	id := s.world.ID()

	// Minimal Prometheus exposition format.
	gauge := func(name, help string, v int) {
		fmt.Fprintf(rw, "# HELP tubecraft_world_%s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE tubecraft_world_%s gauge\n", name)
		fmt.Fprintf(rw, "tubecraft_world_%s{world=%q} %d\n", name, id, v)
	}
	fmt.Fprintf(rw, "# HELP tubecraft_world_seq Last applied action sequence.\n")
	fmt.Fprintf(rw, "# TYPE tubecraft_world_seq counter\n")
	fmt.Fprintf(rw, "tubecraft_world_seq{world=%q} %d\n", id, m.Seq)

	gauge("cells", "Non-air cells.", m.Cells)
	gauge("loaded_chunks", "Loaded chunk count.", m.LoadedChunks)
	gauge("junctions", "Tube junctions.", m.Junctions)
	gauge("stations", "Registered stations.", m.Stations)
	gauge("pending_bookings", "Stations with a pending trip.", m.Pending)
	gauge("open_forms", "Open terminal forms.", m.OpenForms)
	gauge("subscribers", "Connected event subscribers.", m.Subscribers)

	fmt.Fprintf(rw, "# HELP tubecraft_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE tubecraft_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "tubecraft_world_queue_depth{world=%q,queue=%q} %d\n", id, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "tubecraft_world_queue_depth{world=%q,queue=%q} %d\n", id, "subscribe", m.QueueDepths.Subscribe)
	fmt.Fprintf(rw, "tubecraft_world_queue_depth{world=%q,queue=%q} %d\n", id, "admin", m.QueueDepths.Admin)

	fmt.Fprintf(rw, "# HELP tubecraft_world_actions_total Action outcomes.\n")
	fmt.Fprintf(rw, "# TYPE tubecraft_world_actions_total counter\n")
	for _, c := range []struct {
		name string
		v    uint64
	}{
		{"placements", m.Counters.Placements},
		{"removals", m.Counters.Removals},
		{"rejections", m.Counters.Rejections},
		{"bookings", m.Counters.Bookings},
		{"departures", m.Counters.Departures},
	} {
		fmt.Fprintf(rw, "tubecraft_world_actions_total{world=%q,outcome=%q} %d\n", id, c.name, c.v)
	}
}

func (s *Server) handleAdminState(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, struct {
		WorldID string             `json:"world_id"`
		Metrics world.WorldMetrics `json:"metrics"`
	}{
		WorldID: s.world.ID(),
		Metrics: s.world.Metrics(),
	})
}

func (s *Server) handleAdminSnapshot(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	seq, err := s.world.RequestSnapshot(ctx)
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "seq": seq, "error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "seq": seq})
}

func loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(rw, r)
	})
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeJSONError(rw http.ResponseWriter, status int, code, msg string) {
	writeJSON(rw, status, map[string]string{"code": code, "error": msg})
}
