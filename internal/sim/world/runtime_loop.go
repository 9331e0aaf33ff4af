package world

import (
	"context"
	"errors"

	"tubecraft.ai/internal/protocol"
)

var ErrStopped = errors.New("world stopped")

type subscribeReq struct {
	ID  string
	Out chan []byte
}

// Run serves actions until ctx is done or Stop is called. Each action is
// applied to completion before the next one is read.
func (w *World) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.subscribe:
			w.subs[req.ID] = req.Out
			w.publishMetrics()
		case id := <-w.unsubscribe:
			delete(w.subs, id)
			w.publishMetrics()
		case req := <-w.admin:
			w.handleAdminSnapshotRequest(req)
		case env := <-w.inbox:
			res := w.apply(env)
			if env.Resp != nil {
				select {
				case env.Resp <- res:
				default:
					// Caller gave up; don't block the world loop.
				}
			}
			w.flushEvents()
			w.maybeSnapshot()
			w.publishMetrics()
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Submit hands act to the world loop and waits for its result.
func (w *World) Submit(ctx context.Context, playerID string, admin bool, act protocol.ActMsg) (protocol.ActResultMsg, error) {
	resp := make(chan protocol.ActResultMsg, 1)
	env := ActionEnvelope{PlayerID: playerID, Admin: admin, Act: act, Resp: resp}
	select {
	case w.inbox <- env:
	case <-w.stop:
		return protocol.ActResultMsg{}, ErrStopped
	case <-ctx.Done():
		return protocol.ActResultMsg{}, ctx.Err()
	}
	select {
	case r := <-resp:
		return r, nil
	case <-w.stop:
		return protocol.ActResultMsg{}, ErrStopped
	case <-ctx.Done():
		return protocol.ActResultMsg{}, ctx.Err()
	}
}

// Subscribe registers out to receive EVENT messages. Delivery drops the
// oldest queued message when out is full.
func (w *World) Subscribe(ctx context.Context, id string, out chan []byte) error {
	select {
	case w.subscribe <- subscribeReq{ID: id, Out: out}:
		return nil
	case <-w.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *World) Unsubscribe(id string) {
	select {
	case w.unsubscribe <- id:
	case <-w.stop:
	}
}
