package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsDecide struct {
	Intelligence int    `json:"intelligence"`
	Board        string `json:"board"`
}

// handleWS answers "decide" messages with "thinking" followed by either
// "decision" or "error". Requests on one connection are served in order.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	send := make(chan []byte, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, send); err != nil {
			log.Printf("[api] ws write: %v", err)
		}
	}()
	defer func() {
		close(send)
		<-done
	}()

	reply := func(typ string, payload any) {
		msg := wsMessage{Type: typ}
		if payload != nil {
			msg.Payload = mustMarshal(payload)
		}
		select {
		case send <- mustMarshal(msg):
		case <-done:
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply("error", map[string]string{"error": "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			reply("pong", nil)
		case "decide":
			var req wsDecide
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				reply("error", map[string]string{"error": "invalid payload"})
				continue
			}
			pos, err := s.parseBoard(req.Board, true)
			if err != nil {
				reply("error", map[string]string{"error": err.Error()})
				continue
			}
			reply("thinking", nil)
			rec, err := s.decide(r.Context(), &pos, req.Intelligence)
			if err != nil {
				reply("error", map[string]string{"error": err.Error()})
				continue
			}
			reply("decision", rec)
		default:
			reply("error", map[string]string{"error": "unknown message type " + msg.Type})
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
