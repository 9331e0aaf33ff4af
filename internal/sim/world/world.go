package world

import (
	"errors"
	"fmt"
	"sync/atomic"

	"tubecraft.ai/internal/persistence/snapshot"
	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/catalogs"
	"tubecraft.ai/internal/sim/world/feature/station/booking"
	"tubecraft.ai/internal/sim/world/feature/station/reachability"
	"tubecraft.ai/internal/sim/world/feature/station/registry"
	"tubecraft.ai/internal/sim/world/feature/tube/junction"
	"tubecraft.ai/internal/sim/world/feature/tube/topology"
	"tubecraft.ai/internal/sim/world/terrain/store"
)

// World is a single-threaded authoritative tube network.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	blocks   roleBlocks

	grid      *store.ChunkStore
	junctions *junction.Resolver
	topo      *topology.Engine
	stations  *registry.Registry
	reach     *reachability.Finder
	bookings  *booking.Service

	forms     map[string]*openForm
	formOrder []string
	subs      map[string]chan []byte

	seq      atomic.Uint64
	counters Counters

	actionsSinceSnapshot int
	pendingEvents        []protocol.Event

	inbox       chan ActionEnvelope
	subscribe   chan subscribeReq
	unsubscribe chan string
	admin       chan adminSnapshotReq
	stop        chan struct{}

	// Optional audit sink (may be nil). Implemented in internal/persistence/*.
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	metrics atomic.Value
}

// roleBlocks caches the palette ids the world places for each block role.
type roleBlocks struct {
	tube     uint16
	junction uint16
	station  uint16
	terminal uint16
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, errors.New("nil catalogs")
	}
	cfg = cfg.withDefaults()
	mode, err := reachability.ParseMode(cfg.Reachability)
	if err != nil {
		return nil, err
	}
	cfg.Reachability = string(mode)

	var rb roleBlocks
	for _, r := range []struct {
		role string
		dst  *uint16
	}{
		{catalogs.RoleTube, &rb.tube},
		{catalogs.RoleJunction, &rb.junction},
		{catalogs.RoleStation, &rb.station},
		{catalogs.RoleTerminal, &rb.terminal},
	} {
		id, ok := cats.Blocks.ByRole(r.role)
		if !ok {
			return nil, fmt.Errorf("block catalog has no %s block", r.role)
		}
		*r.dst = id
	}

	w := &World{
		cfg:         cfg,
		catalogs:    cats,
		blocks:      rb,
		forms:       map[string]*openForm{},
		subs:        map[string]chan []byte{},
		inbox:       make(chan ActionEnvelope, 1024),
		subscribe:   make(chan subscribeReq, 64),
		unsubscribe: make(chan string, 64),
		admin:       make(chan adminSnapshotReq, 16),
		stop:        make(chan struct{}),
	}
	w.resetState(store.NewChunkStore(cfg.BoundaryR))
	w.publishMetrics()
	return w, nil
}

// resetState wires the feature packages around grid. Stations and bookings
// start empty.
func (w *World) resetState(grid *store.ChunkStore) {
	w.grid = grid
	w.junctions = junction.New(grid)
	w.junctions.Rebuild(grid.ForEach)
	w.topo = topology.New(grid, w.junctions)
	w.stations = registry.New(float64(w.cfg.MaxBookingDistance))
	w.reach = reachability.New(reachability.Mode(w.cfg.Reachability), w.stations, grid, w.junctions)
	w.bookings = booking.New(w.stations, w.reach, booking.DoorFunc(w.openPodDoor))
}

func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() WorldConfig { return w.cfg }

// Params describes the world to newly connected clients. It only reads
// immutable configuration and is safe from any goroutine.
func (w *World) Params() protocol.WorldParams {
	return protocol.WorldParams{
		ChunkSize:          [3]int{store.ChunkEdge, store.ChunkEdge, store.ChunkEdge},
		BoundaryR:          w.cfg.BoundaryR,
		MaxBookingDistance: int(w.stations.MaxDistance()),
		Reachability:       string(w.reach.Mode()),
	}
}

func (w *World) CatalogDigests() protocol.CatalogDigests {
	return protocol.CatalogDigests{
		BlockPalette: protocol.DigestRef{
			Digest: w.catalogs.Blocks.PaletteDigest,
			Count:  len(w.catalogs.Blocks.Palette),
		},
		TuningDigest: w.cfg.TuningDigest,
	}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
