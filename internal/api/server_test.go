package api

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
)

func newTestServer(t *testing.T, withStore bool, cfg Config) *httptest.Server {
	t.Helper()
	var store *storage.Storage
	if withStore {
		var err error
		store, err = storage.OpenInMemory()
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { store.Close() })
	}
	srv := httptest.NewServer(NewServer(engine.NewEngine(), store, cfg).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, q url.Values) *http.Response {
	t.Helper()
	u := srv.URL + path
	if q != nil {
		u += "?" + q.Encode()
	}
	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func action(fromX, fromY, toX, toY int) *engine.ActionView {
	return &engine.ActionView{
		Piece: engine.PieceView{X: fromX, Y: fromY},
		X:     toX,
		Y:     toY,
	}
}

type decisionBody struct {
	TimeTaken        int64              `json:"timeTaken"`
	MinimaxValue     float64            `json:"minimaxValue"`
	ActionTaken      *engine.ActionView `json:"actionTaken"`
	ResultBoard      string             `json:"resultBoard"`
	NumNodesExpanded uint64             `json:"numNodesExpanded"`
	Intelligence     int                `json:"intelligence"`
}

func TestHealthAndInitialBoard(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	if resp := get(t, srv, "/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status %d", resp.StatusCode)
	}

	resp := get(t, srv, "/api/initial-board", nil)
	body, _ := io.ReadAll(resp.Body)
	if string(body) != board.OpeningBoard {
		t.Errorf("initial board:\n%s", body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestActions(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	resp := get(t, srv, "/api/actions", url.Values{"board": {board.OpeningBoard}})
	var actions []engine.ActionView
	decode(t, resp, &actions)

	if len(actions) != 20 {
		t.Fatalf("got %d actions, want 20", len(actions))
	}
	found := false
	for _, a := range actions {
		if a.Piece.Icon == "♙" && a.Piece.X == 0 && a.Piece.Y == 6 && a.X == 0 && a.Y == 4 {
			found = true
		}
		if a.Piece.Icon != "♙" && a.Piece.Icon != "♘" {
			t.Errorf("unexpected mover %q", a.Piece.Icon)
		}
	}
	if !found {
		t.Error("double pawn push (0,6)->(0,4) missing")
	}
}

func TestDecision(t *testing.T) {
	srv := newTestServer(t, true, DefaultConfig())

	resp := get(t, srv, "/api/decision", url.Values{
		"intelligenceLevel": {"1"},
		"board":             {board.OpeningBoard},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var rec decisionBody
	decode(t, resp, &rec)

	if rec.NumNodesExpanded != 21 {
		t.Errorf("nodes = %d, want 21", rec.NumNodesExpanded)
	}
	if rec.Intelligence != 1 || rec.ActionTaken == nil {
		t.Errorf("record = %+v", rec)
	}
	if rec.ResultBoard == board.OpeningBoard {
		t.Error("result board should differ from the opening")
	}

	hist := get(t, srv, "/api/history", url.Values{"limit": {"5"}})
	var entries []storage.DecisionEntry
	decode(t, hist, &entries)
	if len(entries) != 1 || entries[0].Result != rec.ResultBoard {
		t.Errorf("history = %+v", entries)
	}
}

func TestDecisionBadLevel(t *testing.T) {
	srv := newTestServer(t, false, Config{MaxLevel: 3})

	for _, level := range []string{"0", "4", "x"} {
		resp := get(t, srv, "/api/decision", url.Values{
			"intelligenceLevel": {level},
			"board":             {board.OpeningBoard},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("level %s: status %d, want 400", level, resp.StatusCode)
		}
	}
}

func TestResult(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	tests := []struct {
		name   string
		action *engine.ActionView
		status int
	}{
		{"pawn push", action(0, 6, 0, 4), http.StatusOK},
		{"empty square", action(4, 4, 4, 3), http.StatusNotFound},
		{"bot piece", action(0, 1, 0, 2), http.StatusNotFound},
		{"blocked rook", action(0, 7, 0, 5), http.StatusBadRequest},
		{"off board", action(0, 9, 0, 5), http.StatusNotFound},
		{"missing action", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/api/result", actionRequest{Board: board.OpeningBoard, Action: tt.action})
			if resp.StatusCode != tt.status {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			rows := strings.Split(string(body), "\n")
			if len(rows) != 8 || []rune(rows[4])[0] != '♙' || []rune(rows[6])[0] != board.EmptyGlyph {
				t.Errorf("result board:\n%s", body)
			}
		})
	}
}

func TestMoveAndDecide(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	resp := post(t, srv, "/api/decision", decisionRequest{
		Intelligence: 2,
		Board:        board.OpeningBoard,
		Action:       action(1, 7, 2, 5),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var rec decisionBody
	decode(t, resp, &rec)

	rows := strings.Split(rec.ResultBoard, "\n")
	if []rune(rows[5])[2] != '♘' {
		t.Errorf("human knight missing from result:\n%s", rec.ResultBoard)
	}
	if rec.Intelligence != 2 || rec.ActionTaken == nil {
		t.Errorf("record = %+v", rec)
	}
}

func TestMoveAndDecideAfterGameOver(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	text := "♚□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"♖□□□□□□□\n" +
		"□□□□□□□♔"
	resp := post(t, srv, "/api/decision", decisionRequest{
		Intelligence: 1,
		Board:        text,
		Action:       action(0, 6, 0, 0),
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status %d, want 409", resp.StatusCode)
	}
}

func TestStrictBoards(t *testing.T) {
	srv := newTestServer(t, false, Config{Strict: true})

	resp := get(t, srv, "/api/actions", url.Values{"board": {"♜♞♝"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}
	resp = get(t, srv, "/api/actions", url.Values{"board": {board.OpeningBoard}})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d, want 200", resp.StatusCode)
	}
}

func TestBoardPNG(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	resp := get(t, srv, "/api/board.png", url.Values{"board": {board.OpeningBoard}, "size": {"16"}})
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("width %d, want 128", img.Bounds().Dx())
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())
	if resp := get(t, srv, "/api/history", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", resp.StatusCode)
	}
}

func TestWebSocketDecide(t *testing.T) {
	srv := newTestServer(t, false, DefaultConfig())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	read := func() wsMessage {
		t.Helper()
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		return msg
	}

	req := wsMessage{Type: "decide", Payload: mustMarshal(wsDecide{Intelligence: 1, Board: board.OpeningBoard})}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}
	if msg := read(); msg.Type != "thinking" {
		t.Fatalf("first message %q, want thinking", msg.Type)
	}
	msg := read()
	if msg.Type != "decision" {
		t.Fatalf("second message %q, want decision", msg.Type)
	}
	var rec decisionBody
	if err := json.Unmarshal(msg.Payload, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.NumNodesExpanded != 21 {
		t.Errorf("nodes = %d, want 21", rec.NumNodesExpanded)
	}

	bad := wsMessage{Type: "decide", Payload: mustMarshal(wsDecide{Intelligence: 0, Board: board.OpeningBoard})}
	if err := conn.WriteJSON(bad); err != nil {
		t.Fatal(err)
	}
	read() // thinking
	if msg := read(); msg.Type != "error" {
		t.Errorf("message %q, want error", msg.Type)
	}
}
