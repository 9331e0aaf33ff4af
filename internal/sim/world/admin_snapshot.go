package world

import (
	"context"
	"errors"
)

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Seq uint64
	Err string
}

// RequestSnapshot asks the world loop goroutine to enqueue a snapshot.
// It is safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) RequestSnapshot(ctx context.Context) (seq uint64, err error) {
	if w == nil || w.admin == nil {
		return 0, errors.New("admin snapshot not available")
	}
	resp := make(chan adminSnapshotResp, 1)
	req := adminSnapshotReq{Resp: resp}

	select {
	case w.admin <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Seq, errors.New(r.Err)
		}
		return r.Seq, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminSnapshotRequest(req adminSnapshotReq) {
	errStr := ""
	if w.snapshotSink == nil {
		errStr = "snapshot sink not configured"
	} else if !w.pushSnapshot() {
		errStr = "snapshot sink backpressure"
	}
	if req.Resp == nil {
		return
	}
	select {
	case req.Resp <- adminSnapshotResp{Seq: w.seq.Load(), Err: errStr}:
	default:
		// Client timed out; don't block the world loop.
	}
}

// maybeSnapshot pushes a periodic snapshot every SnapshotEveryActions
// mutations.
func (w *World) maybeSnapshot() {
	if w.snapshotSink == nil || w.cfg.SnapshotEveryActions <= 0 {
		return
	}
	if w.actionsSinceSnapshot < w.cfg.SnapshotEveryActions {
		return
	}
	w.pushSnapshot()
}

func (w *World) pushSnapshot() bool {
	snap := w.ExportSnapshot()
	select {
	case w.snapshotSink <- snap:
		w.actionsSinceSnapshot = 0
		return true
	default:
		return false
	}
}
