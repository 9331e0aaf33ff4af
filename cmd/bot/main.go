package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"tubecraft.ai/internal/protocol"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name    = flag.String("name", "bot", "player name")
		originX = flag.Int("x", 0, "x of the first station; the demo line runs along +x")
		length  = flag.Int("length", 6, "tube cells between the two stations")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := readJSON(conn, &welcome); err != nil {
		logger.Fatalf("read WELCOME: %v", err)
	}
	logger.Printf("WELCOME player_id=%s world=%s reachability=%s", welcome.PlayerID, welcome.WorldID, welcome.WorldParams.Reachability)

	c := &client{conn: conn, log: logger}
	for _, act := range demoLine(*name, *originX, *length) {
		if _, err := c.do(act); err != nil {
			logger.Fatalf("%s: %v", act.ID, err)
		}
	}
	logger.Printf("demo line built; waiting for events (ctrl-c to quit)")
	for {
		var ev protocol.EventMsg
		if err := readJSON(conn, &ev); err != nil {
			return
		}
		if ev.Type == protocol.TypeEvent {
			logger.Printf("EVENT seq=%d %v", ev.Seq, ev.Event)
		}
	}
}

// demoLine builds two stations joined by a straight tube, then books and
// departs a trip between them.
func demoLine(name string, x0, length int) []protocol.ActMsg {
	if length < 1 {
		length = 1
	}
	a := name + "-A"
	b := name + "-B"
	pos := func(x int) *[3]int { return &[3]int{x, 0, 0} }

	acts := []protocol.ActMsg{
		{ID: "place_a", Action: protocol.ActPlaceBlock, Pos: pos(x0), Block: "STATION", Name: a},
	}
	for i := 1; i <= length; i++ {
		acts = append(acts, protocol.ActMsg{ID: fmt.Sprintf("tube_%d", i), Action: protocol.ActPlaceBlock, Pos: pos(x0 + i), Block: "TUBE"})
	}
	acts = append(acts,
		protocol.ActMsg{ID: "place_b", Action: protocol.ActPlaceBlock, Pos: pos(x0 + length + 1), Block: "STATION", Name: b},
		protocol.ActMsg{ID: "list", Action: protocol.ActStationDestinations, Station: a},
		protocol.ActMsg{ID: "book", Action: protocol.ActBook, Station: a, Index: 1},
		protocol.ActMsg{ID: "depart", Action: protocol.ActDepart, Station: a},
	)
	for i := range acts {
		acts[i].Type = protocol.TypeAct
		acts[i].ProtocolVersion = protocol.Version
	}
	return acts
}

type client struct {
	conn *websocket.Conn
	log  *log.Logger
}

// do sends act and waits for its ACT_RESULT, logging events seen meanwhile.
func (c *client) do(act protocol.ActMsg) (protocol.ActResultMsg, error) {
	if err := c.conn.WriteJSON(act); err != nil {
		return protocol.ActResultMsg{}, err
	}
	for {
		var raw json.RawMessage
		if err := readJSON(c.conn, &raw); err != nil {
			return protocol.ActResultMsg{}, err
		}
		base, err := protocol.DecodeBase(raw)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeEvent:
			var ev protocol.EventMsg
			if json.Unmarshal(raw, &ev) == nil {
				c.log.Printf("EVENT seq=%d %v", ev.Seq, ev.Event)
			}
		case protocol.TypeActResult:
			var res protocol.ActResultMsg
			if err := json.Unmarshal(raw, &res); err != nil {
				return res, err
			}
			if res.ActID != act.ID {
				continue
			}
			if !res.OK {
				return res, fmt.Errorf("%s %s", res.Code, res.Message)
			}
			c.log.Printf("%s ok seq=%d data=%v", act.ID, res.Seq, res.Data)
			return res, nil
		}
	}
}

func readJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(msg, v)
}
