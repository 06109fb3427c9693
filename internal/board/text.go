package board

import (
	"fmt"
	"strings"
)

// OpeningBoard is the text form of the starting layout.
// The bot's pieces fill the first two rows.
const OpeningBoard = "♜♞♝♚♛♝♞♜\n" +
	"♟♟♟♟♟♟♟♟\n" +
	"□□□□□□□□\n" +
	"□□□□□□□□\n" +
	"□□□□□□□□\n" +
	"□□□□□□□□\n" +
	"♙♙♙♙♙♙♙♙\n" +
	"♖♘♗♔♕♗♘♖"

// String returns the board text: eight rows of eight glyphs, separated by newlines.
func (p *Position) String() string {
	var sb strings.Builder
	sb.Grow(NumSquares*3 + BoardSize)
	for rank := 0; rank < BoardSize; rank++ {
		if rank > 0 {
			sb.WriteByte('\n')
		}
		for file := 0; file < BoardSize; file++ {
			h, ok := p.PieceAt(NewSquare(file, rank))
			if !ok {
				sb.WriteRune(EmptyGlyph)
				continue
			}
			sb.WriteRune(p.pieces[h].Glyph())
		}
	}
	return sb.String()
}

// splitRows splits board text into rows of runes.
// Carriage returns and a single trailing newline are dropped.
func splitRows(text string) [][]rune {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
	}
	return rows
}

// ParseBoard parses board text into a Position with the given side to move.
//
// Parsing is lenient: unknown runes are read as empty squares and cells
// outside the 8×8 grid are ignored. The terminal state is derived from the
// kings on the board.
func ParseBoard(text string, botTurn bool) Position {
	turn := Human
	if botTurn {
		turn = Bot
	}
	pos := newEmptyPosition(turn)
	for rank, row := range splitRows(text) {
		if rank >= BoardSize {
			break
		}
		for file, r := range row {
			if file >= BoardSize {
				break
			}
			owner, kind, ok := ParseGlyph(r)
			if !ok {
				continue
			}
			// One piece per square and at most 64 squares: cannot fail.
			_, _ = pos.addPiece(kind, owner, NewSquare(file, rank))
		}
	}
	pos.classifyParsed()
	return pos
}

// ParseBoardStrict is like ParseBoard but rejects boards that are not
// exactly 8×8 or contain runes other than piece glyphs and the empty glyph.
func ParseBoardStrict(text string, botTurn bool) (Position, error) {
	rows := splitRows(text)
	if len(rows) != BoardSize {
		return Position{}, fmt.Errorf("%w: %d rows, want %d", ErrInvalidBoard, len(rows), BoardSize)
	}
	for rank, row := range rows {
		if len(row) != BoardSize {
			return Position{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, rank, len(row), BoardSize)
		}
		for file, r := range row {
			if r == EmptyGlyph {
				continue
			}
			if _, _, ok := ParseGlyph(r); !ok {
				return Position{}, fmt.Errorf("%w: unknown glyph %q at %s", ErrInvalidBoard, r, NewSquare(file, rank))
			}
		}
	}
	return ParseBoard(text, botTurn), nil
}
