package engine

import (
	"encoding/json"
	"time"

	"github.com/hailam/chessbot/internal/board"
)

// DecisionRecord is the outcome of one decision.
type DecisionRecord struct {
	Elapsed time.Duration
	Value   float64
	Action  board.Action // NoAction when the side to move had none
	Piece   board.Piece  // The moved piece, as it stood before the action
	Result  board.Position
	Nodes   uint64
	Level   int
	Cached  bool // Served from the decision cache; Nodes counts only the root
}

// Move describes the action as "glyph from->to".
func (r DecisionRecord) Move() string {
	if r.Action.IsNull() {
		return "no action"
	}
	return r.Piece.String() + " " + r.Action.String()
}

// PieceView is the wire form of a piece: its glyph and square.
type PieceView struct {
	Icon string `json:"icon"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// ActionView is the wire form of an action. X is the file and Y the rank
// of the destination.
type ActionView struct {
	Piece PieceView `json:"piece"`
	X     int       `json:"x"`
	Y     int       `json:"y"`
}

// NewActionView converts an action generated from pos.
func NewActionView(pos *board.Position, a board.Action) ActionView {
	pc := pos.Piece(a.Piece)
	return ActionView{
		Piece: PieceView{Icon: pc.String(), X: a.From.File(), Y: a.From.Rank()},
		X:     a.To.File(),
		Y:     a.To.Rank(),
	}
}

type decisionJSON struct {
	TimeTaken        int64       `json:"timeTaken"`
	MinimaxValue     float64     `json:"minimaxValue"`
	ActionTaken      *ActionView `json:"actionTaken"`
	ResultBoard      string      `json:"resultBoard"`
	NumNodesExpanded uint64      `json:"numNodesExpanded"`
	Intelligence     int         `json:"intelligence"`
}

// MarshalJSON encodes the record with the elapsed time in milliseconds and
// the result position as board text.
func (r DecisionRecord) MarshalJSON() ([]byte, error) {
	out := decisionJSON{
		TimeTaken:        r.Elapsed.Milliseconds(),
		MinimaxValue:     r.Value,
		ResultBoard:      r.Result.String(),
		NumNodesExpanded: r.Nodes,
		Intelligence:     r.Level,
	}
	if !r.Action.IsNull() {
		out.ActionTaken = &ActionView{
			Piece: PieceView{Icon: r.Piece.String(), X: r.Action.From.File(), Y: r.Action.From.Rank()},
			X:     r.Action.To.File(),
			Y:     r.Action.To.Rank(),
		}
	}
	return json.Marshal(out)
}
