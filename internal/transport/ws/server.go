package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tubecraft.ai/internal/protocol"
	"tubecraft.ai/internal/sim/world"
)

// defaultQueue bounds per-connection EVENT buffering. The world drops the
// oldest queued event when a slow client fills it. ACT_RESULT replies go
// through their own channel and are never dropped.
const defaultQueue = 64

type Server struct {
	world *world.World
	log   *log.Logger
	queue int

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		world: w,
		log:   logger,
		queue: defaultQueue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// WithQueue sets the per-connection outbound queue length.
func (s *Server) WithQueue(n int) *Server {
	if n > 0 {
		s.queue = n
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan []byte, s.queue)
		replies := make(chan []byte, 1)
		if err := s.world.Subscribe(ctx, playerID, events); err != nil {
			return
		}
		defer s.world.Unsubscribe(playerID)

		go s.writeLoop(ctx, cancel, conn, replies, events)

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			res, ok := s.handleAct(ctx, playerID, msg)
			if !ok {
				break
			}
			b, err := json.Marshal(res)
			if err != nil {
				continue
			}
			select {
			case replies <- b:
			case <-ctx.Done():
			}
		}
	}
}

// writeLoop drains replies and events onto conn. Pending replies are written
// before queued events.
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, replies, events <-chan []byte) {
	write := func(b []byte) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			cancel()
			return false
		}
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-replies:
			if !write(b) {
				return
			}
			continue
		default:
		}
		select {
		case <-ctx.Done():
			return
		case b := <-replies:
			if !write(b) {
				return
			}
		case b := <-events:
			if !write(b) {
				return
			}
		}
	}
}

// handleAct validates and submits one inbound ACT. It reports false once the
// world has stopped.
func (s *Server) handleAct(ctx context.Context, playerID string, msg []byte) (protocol.ActResultMsg, bool) {
	base, err := protocol.ValidateInbound(msg)
	if err != nil || base.Type != protocol.TypeAct {
		if err == nil {
			err = errors.New("expected ACT")
		}
		return badRequest("", err.Error()), true
	}
	var act protocol.ActMsg
	if err := json.Unmarshal(msg, &act); err != nil {
		return badRequest("", err.Error()), true
	}
	if act.ProtocolVersion != protocol.Version {
		return badRequest(act.ID, "bad protocol_version"), true
	}
	res, err := s.world.Submit(ctx, playerID, false, act)
	if err != nil {
		if errors.Is(err, world.ErrStopped) {
			return protocol.ActResultMsg{}, false
		}
		s.log.Printf("submit %s from %s: %v", act.Action, playerID, err)
		return protocol.ActResultMsg{
			Type:            protocol.TypeActResult,
			ProtocolVersion: protocol.Version,
			ActID:           act.ID,
			Code:            protocol.ErrWorldBusy,
			Message:         err.Error(),
		}, true
	}
	return res, true
}

func badRequest(actID, msg string) protocol.ActResultMsg {
	return protocol.ActResultMsg{
		Type:            protocol.TypeActResult,
		ProtocolVersion: protocol.Version,
		ActID:           actID,
		Code:            protocol.ErrProtoBadRequest,
		Message:         msg,
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, ok bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.ValidateInbound(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", false
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", false
	}

	playerID = "P-" + uuid.NewString()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		PlayerID:        playerID,
		WorldID:         s.world.ID(),
		WorldParams:     s.world.Params(),
		Catalogs:        s.world.CatalogDigests(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	s.log.Printf("player %q joined as %s", hello.PlayerName, playerID)
	return playerID, true
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
