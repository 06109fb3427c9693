package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/render"
	"github.com/hailam/chessbot/internal/storage"
)

// actionRequest is a human action on a board, as sent by clients.
type actionRequest struct {
	Board  string             `json:"board"`
	Action *engine.ActionView `json:"action"`
}

// decisionRequest asks the bot to answer a human action.
type decisionRequest struct {
	Intelligence int                `json:"intelligence"`
	Board        string             `json:"board"`
	Action       *engine.ActionView `json:"action"`
}

func (s *Server) handleInitialBoard(w http.ResponseWriter, r *http.Request) {
	writeText(w, board.OpeningBoard)
}

// handleActions lists the actions available to the human on the given board.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	pos, err := s.parseBoard(r.URL.Query().Get("board"), false)
	if err != nil {
		writeError(w, err)
		return
	}

	out := []engine.ActionView{}
	if !pos.IsTerminal() {
		for _, a := range pos.Actions() {
			out = append(out, engine.NewActionView(&pos, a))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDecision lets the bot move on the given board.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, err := strconv.Atoi(q.Get("intelligenceLevel"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid intelligenceLevel"})
		return
	}
	pos, err := s.parseBoard(q.Get("board"), true)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Printf("[api] decision at level %d on\n%s", level, pos.String())
	rec, err := s.decide(r.Context(), &pos, level)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleMoveAndDecide applies the human action, then lets the bot answer.
func (s *Server) handleMoveAndDecide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	pos, err := s.humanResult(req.Board, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.decide(r.Context(), &pos, req.Intelligence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleResult returns the board after a human action.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	pos, err := s.humanResult(req.Board, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, pos.String())
}

// humanResult parses board with the human to move and applies the action.
func (s *Server) humanResult(text string, av *engine.ActionView) (board.Position, error) {
	if av == nil {
		return board.Position{}, fmt.Errorf("%w: missing action", board.ErrIllegalAction)
	}
	pos, err := s.parseBoard(text, false)
	if err != nil {
		return board.Position{}, err
	}

	from := board.NewSquare(av.Piece.X, av.Piece.Y)
	to := board.NewSquare(av.X, av.Y)
	if from == board.NoSquare {
		return board.Position{}, fmt.Errorf("%w: piece at (%d,%d)", board.ErrPieceNotFound, av.Piece.X, av.Piece.Y)
	}
	a, err := pos.LegalAction(from, to)
	if err != nil {
		return board.Position{}, err
	}
	return pos.Apply(a)
}

// handleBoardPNG renders the given board.
func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pos, err := s.parseBoard(q.Get("board"), false)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := render.DefaultOptions()
	if size, err := strconv.Atoi(q.Get("size")); err == nil && size >= 8 && size <= 256 {
		opts.SquareSize = size
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, &pos, opts); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleHistory lists recent decisions, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history is disabled"})
		return
	}

	limit := s.cfg.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := s.store.ListDecisions(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []storage.DecisionEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
