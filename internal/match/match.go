// Package match tracks one human-versus-bot game for the desktop client:
// the current position, the played actions and the final outcome.
package match

import (
	"errors"
	"fmt"
	"time"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
)

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrOwnPiece    = errors.New("square occupied by your piece")
)

// Outcome is the state of a match as seen by the human.
type Outcome int

const (
	Ongoing Outcome = iota
	HumanWon
	BotWon
	Drawn
)

// String returns the status line shown when the match ends.
func (o Outcome) String() string {
	switch o {
	case HumanWon:
		return "You captured the king!"
	case BotWon:
		return "The bot captured your king"
	case Drawn:
		return "Draw"
	default:
		return ""
	}
}

// Entry is one played action.
type Entry struct {
	By      board.Owner
	Piece   board.Piece // As it stood before the action
	Action  board.Action
	Capture rune // Glyph of the captured piece, 0 if none

	// Bot decisions only
	Value   float64
	Nodes   uint64
	Elapsed time.Duration
}

// String describes the entry as "glyph from->to", with the captured glyph appended.
func (e Entry) String() string {
	if e.Action.IsNull() {
		return "pass"
	}
	s := e.Piece.String() + " " + e.Action.String()
	if e.Capture != 0 {
		s += " x" + string(e.Capture)
	}
	return s
}

// Match is a game in progress. It is not safe for concurrent use; the bot
// searches on a copy of Position.
type Match struct {
	pos        board.Position
	history    []Entry
	difficulty storage.Difficulty
	started    time.Time
}

// New starts a match from the opening with the human to move.
func New(d storage.Difficulty) *Match {
	return NewFrom(board.NewPosition(), d)
}

// NewFrom starts a match from an arbitrary position.
func NewFrom(pos board.Position, d storage.Difficulty) *Match {
	return &Match{
		pos:        pos,
		difficulty: d,
		started:    time.Now(),
	}
}

// Position returns a copy of the current position.
func (m *Match) Position() board.Position {
	return m.pos
}

// History returns the played actions, oldest first.
func (m *Match) History() []Entry {
	return m.history
}

// LastAction returns the most recent action, or NoAction.
func (m *Match) LastAction() board.Action {
	if len(m.history) == 0 {
		return board.NoAction
	}
	return m.history[len(m.history)-1].Action
}

// Difficulty returns the bot strength of the match.
func (m *Match) Difficulty() storage.Difficulty {
	return m.difficulty
}

// SetDifficulty changes the bot strength for the following decisions.
func (m *Match) SetDifficulty(d storage.Difficulty) {
	m.difficulty = d
}

// Level returns the intelligence level the bot searches with.
func (m *Match) Level() int {
	return m.difficulty.Level()
}

// IsHumanTurn returns true while the match waits for the human.
func (m *Match) IsHumanTurn() bool {
	return !m.pos.IsTerminal() && m.pos.IsHumanTurn()
}

// IsBotTurn returns true while the match waits for a bot decision.
func (m *Match) IsBotTurn() bool {
	return !m.pos.IsTerminal() && m.pos.IsBotTurn()
}

// Targets returns the destinations of the human piece on sq, or nil when
// the square holds no movable human piece.
func (m *Match) Targets(sq board.Square) []board.Square {
	if !m.IsHumanTurn() {
		return nil
	}
	h, ok := m.pos.PieceAt(sq)
	if !ok || m.pos.Piece(h).Owner != board.Human {
		return nil
	}
	return m.pos.Movements(h)
}

// Resolve builds the human action from one square to another, or explains
// why it cannot be played.
func (m *Match) Resolve(from, to board.Square) (board.Action, error) {
	switch {
	case m.pos.IsTerminal():
		return board.NoAction, board.ErrGameOver
	case !m.pos.IsHumanTurn():
		return board.NoAction, ErrNotYourTurn
	case m.pos.OwnerAt(from) == board.Human && m.pos.OwnerAt(to) == board.Human:
		return board.NoAction, fmt.Errorf("%w: %w", board.ErrIllegalAction, ErrOwnPiece)
	}
	return m.pos.LegalAction(from, to)
}

// PlayHuman plays the human action from one square to another.
func (m *Match) PlayHuman(from, to board.Square) (Entry, error) {
	a, err := m.Resolve(from, to)
	if err != nil {
		return Entry{}, err
	}
	return m.apply(board.Human, a)
}

// ApplyDecision plays a bot decision made on a copy of the current position.
func (m *Match) ApplyDecision(rec engine.DecisionRecord) (Entry, error) {
	switch {
	case m.pos.IsTerminal():
		return Entry{}, board.ErrGameOver
	case !m.pos.IsBotTurn():
		return Entry{}, ErrNotYourTurn
	}

	var (
		e   Entry
		err error
	)
	if rec.Action.IsNull() {
		e = m.pass(board.Bot)
	} else if e, err = m.apply(board.Bot, rec.Action); err != nil {
		return Entry{}, err
	}
	e.Value = rec.Value
	e.Nodes = rec.Nodes
	e.Elapsed = rec.Elapsed
	m.history[len(m.history)-1] = e
	return e, nil
}

// PassIfStuck ends the match as a draw when the human has no action.
func (m *Match) PassIfStuck() bool {
	if !m.IsHumanTurn() || len(m.pos.Actions()) > 0 {
		return false
	}
	m.pass(board.Human)
	return true
}

func (m *Match) apply(by board.Owner, a board.Action) (Entry, error) {
	e := Entry{
		By:     by,
		Piece:  m.pos.Piece(a.Piece),
		Action: a,
	}
	if h, ok := m.pos.PieceAt(a.To); ok {
		e.Capture = m.pos.Piece(h).Glyph()
	}

	next, err := m.pos.Apply(a)
	if err != nil {
		return Entry{}, err
	}
	m.pos = next
	m.history = append(m.history, e)
	return e, nil
}

func (m *Match) pass(by board.Owner) Entry {
	e := Entry{By: by, Action: board.NoAction}
	m.pos = m.pos.ApplyNull()
	m.history = append(m.history, e)
	return e
}

// Outcome reports whether the match has ended and how.
func (m *Match) Outcome() Outcome {
	switch {
	case !m.pos.IsTerminal():
		return Ongoing
	case m.pos.IsDraw():
		return Drawn
	case m.pos.Winner() == board.Human:
		return HumanWon
	default:
		return BotWon
	}
}

// HumanMoves counts the actions the human has played.
func (m *Match) HumanMoves() int {
	n := 0
	for _, e := range m.history {
		if e.By == board.Human && !e.Action.IsNull() {
			n++
		}
	}
	return n
}

// Result summarises a finished match for the statistics store.
func (m *Match) Result() storage.GameResult {
	winner := board.NoOwner
	switch m.Outcome() {
	case HumanWon:
		winner = board.Human
	case BotWon:
		winner = board.Bot
	}
	return storage.GameResult{
		Winner:     winner,
		Difficulty: m.difficulty,
		Moves:      m.HumanMoves(),
		Duration:   time.Since(m.started),
	}
}
