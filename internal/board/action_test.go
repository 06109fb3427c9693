package board

import (
	"errors"
	"testing"
)

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	pos := NewPosition()
	before := pos.String()

	actions := pos.Actions()
	first := pos.MustApply(actions[0])
	last := pos.MustApply(actions[len(actions)-1])

	if pos.String() != before {
		t.Fatal("Apply modified the receiver")
	}
	if pos.Turn() != Human {
		t.Error("receiver turn changed")
	}
	if first.Turn() != Bot || last.Turn() != Bot {
		t.Error("turn should pass to the bot")
	}
	if first.Equal(&last) {
		t.Error("sibling branches should differ")
	}

	// Moving a piece in one branch must not be visible from the other.
	h := actions[0].Piece
	if got := first.Piece(h).Square(); got != actions[0].To {
		t.Errorf("moved piece on %s, want %s", got, actions[0].To)
	}
	if got := last.Piece(h).Square(); got != actions[0].From {
		t.Errorf("piece %d aliased between branches: on %s in sibling", h, got)
	}
}

func TestKingCaptureEndsGame(t *testing.T) {
	pos := ParseBoard(layout(map[Square]rune{
		NewSquare(4, 0): '♚',
		NewSquare(0, 1): '♟',
		NewSquare(4, 7): '♖',
		NewSquare(7, 7): '♔',
	}), false)
	if pos.IsTerminal() {
		t.Fatal("position should not start terminal")
	}

	a, err := pos.LegalAction(NewSquare(4, 7), NewSquare(4, 0))
	if err != nil {
		t.Fatalf("rook capture not legal: %v", err)
	}
	next := pos.MustApply(a)

	if !next.IsTerminal() {
		t.Fatal("capturing the king should end the game")
	}
	if next.Winner() != Human {
		t.Errorf("winner = %s, want Human", next.Winner())
	}
	if next.BotSide().Count(King) != 0 {
		t.Error("bot king should be dead")
	}
	if _, err := next.Apply(next.Actions()[0]); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver after the end, got %v", err)
	}
}

func TestLoneKingsDraw(t *testing.T) {
	pos := ParseBoard(layout(map[Square]rune{
		NewSquare(0, 0): '♚',
		NewSquare(4, 5): '♜',
		NewSquare(4, 4): '♔',
	}), false)

	a, err := pos.LegalAction(NewSquare(4, 4), NewSquare(4, 5))
	if err != nil {
		t.Fatalf("king capture not legal: %v", err)
	}
	next := pos.MustApply(a)

	if !next.IsDraw() {
		t.Fatal("lone king against lone king should be a draw")
	}
	if next.Winner() != NoOwner {
		t.Errorf("winner = %s, want none", next.Winner())
	}
}

func TestApplyNull(t *testing.T) {
	pos := NewPosition()
	next := pos.ApplyNull()

	if !next.IsTerminal() || next.Winner() != NoOwner {
		t.Fatal("null action should end the game in a draw")
	}
	if next.String() != pos.String() {
		t.Error("null action should not move pieces")
	}
	if pos.IsTerminal() {
		t.Error("receiver should not be terminal")
	}
}

func TestApplyErrors(t *testing.T) {
	pos := NewPosition()

	if _, err := pos.ActionFrom(NewSquare(4, 4), NewSquare(4, 3)); !errors.Is(err, ErrPieceNotFound) {
		t.Errorf("empty square: expected ErrPieceNotFound, got %v", err)
	}
	if _, err := pos.ActionFrom(NewSquare(0, 1), NewSquare(0, 2)); !errors.Is(err, ErrPieceNotFound) {
		t.Errorf("opponent piece: expected ErrPieceNotFound, got %v", err)
	}
	if _, err := pos.LegalAction(NewSquare(0, 7), NewSquare(0, 5)); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("blocked rook: expected ErrIllegalAction, got %v", err)
	}

	// An action from one position is stale once its piece has moved.
	a, err := pos.LegalAction(NewSquare(0, 6), NewSquare(0, 5))
	if err != nil {
		t.Fatal(err)
	}
	moved := pos.MustApply(a)
	reply := moved.Actions()[0]
	back := moved.MustApply(reply)
	if _, err := back.Apply(a); !errors.Is(err, ErrPieceNotFound) {
		t.Errorf("stale action: expected ErrPieceNotFound, got %v", err)
	}
}

func TestTurnAlternates(t *testing.T) {
	pos := NewPosition()
	want := Human
	for ply := 0; ply < 6; ply++ {
		if pos.Turn() != want {
			t.Fatalf("ply %d: turn = %s, want %s", ply, pos.Turn(), want)
		}
		pos = pos.MustApply(pos.Actions()[0])
		want = want.Other()
	}
}
