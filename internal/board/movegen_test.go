package board

import (
	"sort"
	"testing"
)

// perft counts the number of leaf positions at the given depth.
func perft(p *Position, depth int) int64 {
	if depth == 0 || p.IsTerminal() {
		return 1
	}

	actions := p.Actions()
	if depth == 1 {
		return int64(len(actions))
	}

	var nodes int64
	for _, a := range actions {
		next := p.MustApply(a)
		nodes += perft(&next, depth-1)
	}
	return nodes
}

func sortedSquares(sqs []Square) []Square {
	out := append([]Square(nil), sqs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameSquares(a, b []Square) bool {
	a, b = sortedSquares(a), sortedSquares(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpeningMovementCounts(t *testing.T) {
	pos := NewPosition()
	want := map[Kind]int{Pawn: 2, Knight: 2, Bishop: 0, Rook: 0, Queen: 0, King: 0}

	for _, o := range []Owner{Bot, Human} {
		side := pos.Side(o)
		for _, h := range side.Pieces() {
			pc := pos.Piece(h)
			if got := len(pos.Movements(h)); got != want[pc.Kind] {
				t.Errorf("%s %s on %s: %d movements, want %d", o, pc.Kind, pc.Square(), got, want[pc.Kind])
			}
		}
		if got := len(side.Actions()); got != 20 {
			t.Errorf("%s opening actions = %d, want 20", o, got)
		}
		if got := side.CountActions(); got != 20 {
			t.Errorf("%s CountActions = %d, want 20", o, got)
		}
	}
}

func TestPerftOpening(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(&pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

func TestKnightExcludesOwnPieces(t *testing.T) {
	knight := NewSquare(3, 3)
	pos := ParseBoard(layout(map[Square]rune{
		knight:          '♘',
		NewSquare(4, 5): '♙',
		NewSquare(2, 5): '♟',
	}), false)

	h, _ := pos.PieceAt(knight)
	got := pos.Movements(h)
	want := []Square{
		NewSquare(2, 1), NewSquare(2, 5), NewSquare(4, 1),
		NewSquare(1, 2), NewSquare(1, 4), NewSquare(5, 2), NewSquare(5, 4),
	}
	if !sameSquares(got, want) {
		t.Errorf("knight movements = %v, want %v", sortedSquares(got), sortedSquares(want))
	}
}

func TestKnightCorner(t *testing.T) {
	pos := ParseBoard(layout(map[Square]rune{NewSquare(0, 0): '♞'}), true)
	h, _ := pos.PieceAt(NewSquare(0, 0))
	want := []Square{NewSquare(1, 2), NewSquare(2, 1)}
	if got := pos.Movements(h); !sameSquares(got, want) {
		t.Errorf("corner knight movements = %v, want %v", got, want)
	}
}

func TestSlidingStopsAtBlockers(t *testing.T) {
	rook := NewSquare(3, 3)
	pos := ParseBoard(layout(map[Square]rune{
		rook:            '♖',
		NewSquare(3, 5): '♙',
		NewSquare(6, 3): '♟',
	}), false)

	h, _ := pos.PieceAt(rook)
	got := pos.Movements(h)
	want := []Square{
		NewSquare(3, 4),
		NewSquare(3, 2), NewSquare(3, 1), NewSquare(3, 0),
		NewSquare(4, 3), NewSquare(5, 3), NewSquare(6, 3),
		NewSquare(2, 3), NewSquare(1, 3), NewSquare(0, 3),
	}
	if !sameSquares(got, want) {
		t.Errorf("rook movements = %v, want %v", sortedSquares(got), sortedSquares(want))
	}
}

func TestSlidingPieceCounts(t *testing.T) {
	tests := []struct {
		glyph rune
		want  int
	}{
		{'♗', 13},
		{'♖', 14},
		{'♕', 27},
	}
	for _, tc := range tests {
		t.Run(string(tc.glyph), func(t *testing.T) {
			pos := ParseBoard(layout(map[Square]rune{NewSquare(3, 3): tc.glyph}), false)
			h, _ := pos.PieceAt(NewSquare(3, 3))
			if got := len(pos.Movements(h)); got != tc.want {
				t.Errorf("%c on empty board: %d movements, want %d", tc.glyph, got, tc.want)
			}
		})
	}
}

func TestPawnMovements(t *testing.T) {
	start := NewSquare(4, 6)

	tests := []struct {
		name  string
		cells map[Square]rune
		from  Square
		want  []Square
	}{
		{
			name:  "double step from start rank",
			cells: map[Square]rune{start: '♙'},
			from:  start,
			want:  []Square{NewSquare(4, 5), NewSquare(4, 4)},
		},
		{
			name:  "double step blocked at target",
			cells: map[Square]rune{start: '♙', NewSquare(4, 4): '♟'},
			from:  start,
			want:  []Square{NewSquare(4, 5)},
		},
		{
			name:  "no jump over blocker",
			cells: map[Square]rune{start: '♙', NewSquare(4, 5): '♟'},
			from:  start,
			want:  nil,
		},
		{
			name:  "diagonal capture only onto opponent",
			cells: map[Square]rune{start: '♙', NewSquare(3, 5): '♟', NewSquare(5, 5): '♙'},
			from:  start,
			want:  []Square{NewSquare(4, 5), NewSquare(4, 4), NewSquare(3, 5)},
		},
		{
			name:  "single step off start rank",
			cells: map[Square]rune{NewSquare(2, 4): '♙'},
			from:  NewSquare(2, 4),
			want:  []Square{NewSquare(2, 3)},
		},
		{
			name:  "bot pawn advances increasing rank",
			cells: map[Square]rune{NewSquare(2, 1): '♟', NewSquare(1, 2): '♙'},
			from:  NewSquare(2, 1),
			want:  []Square{NewSquare(2, 2), NewSquare(2, 3), NewSquare(1, 2)},
		},
		{
			name:  "no promotion on last rank",
			cells: map[Square]rune{NewSquare(0, 0): '♙'},
			from:  NewSquare(0, 0),
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := ParseBoard(layout(tc.cells), false)
			h, ok := pos.PieceAt(tc.from)
			if !ok {
				t.Fatalf("no piece on %s", tc.from)
			}
			if got := pos.Movements(h); !sameSquares(got, tc.want) {
				t.Errorf("pawn movements = %v, want %v", sortedSquares(got), sortedSquares(tc.want))
			}
		})
	}
}

func TestKingMovements(t *testing.T) {
	pos := ParseBoard(layout(map[Square]rune{
		NewSquare(0, 0): '♚',
		NewSquare(1, 0): '♜',
		NewSquare(1, 1): '♙',
		NewSquare(7, 7): '♔',
	}), true)

	h, _ := pos.PieceAt(NewSquare(0, 0))
	want := []Square{NewSquare(0, 1), NewSquare(1, 1)}
	if got := pos.Movements(h); !sameSquares(got, want) {
		t.Errorf("king movements = %v, want %v", got, want)
	}
}

func TestCursor(t *testing.T) {
	cur := NewCursor(NewSquare(6, 6), NorthEast)
	if !cur.Next() || cur.Square() != NewSquare(7, 7) {
		t.Fatalf("expected (7,7), got %s", cur.Square())
	}
	if cur.Next() {
		t.Error("cursor should leave the board")
	}
	if cur.Square() != NoSquare {
		t.Errorf("off-board cursor square = %s, want NoSquare", cur.Square())
	}
}
