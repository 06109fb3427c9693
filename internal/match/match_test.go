package match

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
)

func sq(file, rank int) board.Square {
	return board.NewSquare(file, rank)
}

func TestTargets(t *testing.T) {
	m := New(storage.DifficultyEasy)

	got := m.Targets(sq(0, 6))
	if len(got) != 2 {
		t.Fatalf("pawn targets = %v, want 2 squares", got)
	}
	if m.Targets(sq(0, 7)) != nil {
		t.Error("blocked rook should have no targets")
	}
	if m.Targets(sq(0, 1)) != nil {
		t.Error("bot pieces are not selectable")
	}
	if m.Targets(sq(4, 4)) != nil {
		t.Error("empty square should have no targets")
	}
}

func TestResolveErrors(t *testing.T) {
	m := New(storage.DifficultyEasy)

	tests := []struct {
		name     string
		from, to board.Square
		want     error
	}{
		{"own piece", sq(0, 7), sq(0, 6), ErrOwnPiece},
		{"bad movement", sq(1, 7), sq(1, 5), board.ErrIllegalAction},
		{"empty square", sq(4, 4), sq(4, 3), board.ErrPieceNotFound},
		{"bot piece", sq(0, 1), sq(0, 2), board.ErrPieceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Resolve(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlayAndDecide(t *testing.T) {
	m := New(storage.DifficultyEasy)

	e, err := m.PlayHuman(sq(4, 6), sq(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if e.By != board.Human || e.Piece.Kind != board.Pawn || e.Capture != 0 {
		t.Errorf("entry = %+v", e)
	}
	if _, err := m.PlayHuman(sq(3, 6), sq(3, 5)); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("second human action: err = %v", err)
	}
	if !m.IsBotTurn() {
		t.Fatal("bot should be to move")
	}

	pos := m.Position()
	rec, err := engine.NewEngine().Decide(context.Background(), &pos, m.Level())
	if err != nil {
		t.Fatal(err)
	}
	be, err := m.ApplyDecision(rec)
	if err != nil {
		t.Fatal(err)
	}
	if be.By != board.Bot || be.Nodes != rec.Nodes || be.Action != rec.Action {
		t.Errorf("bot entry = %+v", be)
	}
	if len(m.History()) != 2 || m.LastAction() != rec.Action {
		t.Errorf("history = %v", m.History())
	}
	if !m.IsHumanTurn() || m.Outcome() != Ongoing {
		t.Error("turn should pass back to the human")
	}
	if _, err := m.ApplyDecision(rec); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("decision on human turn: err = %v", err)
	}
}

func TestKingCapture(t *testing.T) {
	text := "♚□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"□□□□□□□□\n" +
		"♖□□□□□□□\n" +
		"□□□□□□□♔"
	m := NewFrom(board.ParseBoard(text, false), storage.DifficultyHard)

	e, err := m.PlayHuman(sq(0, 6), sq(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if e.Capture != '♚' || e.String() != "♖ (0,6)->(0,0) x♚" {
		t.Errorf("entry %q", e)
	}
	if m.Outcome() != HumanWon {
		t.Fatalf("outcome = %v", m.Outcome())
	}
	if _, err := m.PlayHuman(sq(7, 7), sq(7, 6)); !errors.Is(err, board.ErrGameOver) {
		t.Errorf("action after the end: err = %v", err)
	}

	res := m.Result()
	if res.Winner != board.Human || res.Moves != 1 || res.Difficulty != storage.DifficultyHard {
		t.Errorf("result = %+v", res)
	}
}

func TestPassIfStuck(t *testing.T) {
	// The human king sits behind two files of its own pawns. Pawns on
	// rank 0 have nowhere to go, so nothing on those files can move.
	text := "♙♙□□□□□♚\n" +
		"♙♙□□□□□□\n" +
		"♙♙□□□□□□\n" +
		"♙♙□□□□□□\n" +
		"♙♙□□□□□□\n" +
		"♙♙□□□□□□\n" +
		"♙♙□□□□□□\n" +
		"♔♙□□□□□□"
	m := NewFrom(board.ParseBoard(text, true), storage.DifficultyEasy)
	if !m.IsBotTurn() {
		t.Fatal("fixture should be a running game with the bot to move")
	}

	if m.PassIfStuck() {
		t.Fatal("no pass on the bot turn")
	}
	pos := m.Position()
	rec, err := engine.NewEngine().Decide(context.Background(), &pos, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ApplyDecision(rec); err != nil {
		t.Fatal(err)
	}
	if !m.IsHumanTurn() {
		t.Fatalf("outcome after the bot action = %v, want a running game", m.Outcome())
	}
	if !m.PassIfStuck() {
		t.Fatal("boxed-in human should pass")
	}
	if m.Outcome() != Drawn || m.Result().Winner != board.NoOwner {
		t.Errorf("outcome = %v", m.Outcome())
	}
	h := m.History()
	if len(h) != 2 || h[1].By != board.Human || h[1].String() != "pass" {
		t.Errorf("history = %v", h)
	}
	if m.PassIfStuck() {
		t.Error("finished match should not pass again")
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		d    storage.Difficulty
		want int
	}{
		{storage.DifficultyEasy, 1},
		{storage.DifficultyMedium, 2},
		{storage.DifficultyHard, 4},
		{storage.Difficulty(7), 2},
		{storage.Difficulty(-1), 2},
	}
	for _, tt := range tests {
		m := New(storage.DifficultyEasy)
		m.SetDifficulty(tt.d)
		if got := m.Level(); got != tt.want {
			t.Errorf("difficulty %d: level = %d, want %d", tt.d, got, tt.want)
		}
	}
}
