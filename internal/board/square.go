// Package board implements the board model and rules of the king-capture game.
package board

import "fmt"

// BoardSize is the number of files and ranks.
const BoardSize = 8

// NumSquares is the number of squares on the board.
const NumSquares = BoardSize * BoardSize

// Square represents a square on the board (0-63).
// Rank-major mapping: rank 0 is the bot's back rank and the first text row,
// so Square(rank*8 + file).
type Square uint8

// NoSquare marks an off-board or missing square.
const NoSquare Square = NumSquares

// NewSquare creates a square from file and rank (0-indexed).
// Returns NoSquare if either coordinate is off the board.
func NewSquare(file, rank int) Square {
	if !OnBoard(file, rank) {
		return NoSquare
	}
	return Square(rank*BoardSize + file)
}

// OnBoard reports whether file and rank are both in [0,7].
func OnBoard(file, rank int) bool {
	return file >= 0 && file < BoardSize && rank >= 0 && rank < BoardSize
}

// File returns the file (column) of the square.
func (sq Square) File() int {
	return int(sq) % BoardSize
}

// Rank returns the rank (row) of the square.
func (sq Square) Rank() int {
	return int(sq) / BoardSize
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// String returns the square as "(file,rank)".
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)", sq.File(), sq.Rank())
}

// Direction is one of the eight compass directions.
// North points towards increasing rank.
type Direction uint8

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

// delta holds the file and rank step of each direction.
var delta = [8][2]int{
	North:     {0, 1},
	South:     {0, -1},
	East:      {1, 0},
	West:      {-1, 0},
	NorthEast: {1, 1},
	NorthWest: {-1, 1},
	SouthEast: {1, -1},
	SouthWest: {-1, -1},
}

// Step returns the file and rank offsets of the direction.
func (d Direction) Step() (df, dr int) {
	return delta[d][0], delta[d][1]
}

// String returns the compass name of the direction.
func (d Direction) String() string {
	names := [8]string{"N", "S", "E", "W", "NE", "NW", "SE", "SW"}
	if int(d) >= len(names) {
		return "?"
	}
	return names[d]
}

// Direction sets used by sliding pieces.
var (
	Orthogonals = []Direction{North, South, East, West}
	Diagonals   = []Direction{NorthEast, NorthWest, SouthEast, SouthWest}
	AllDirs     = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
)

// Cursor walks the board from a starting square in a fixed direction.
type Cursor struct {
	file, rank int
	dir        Direction
}

// NewCursor creates a cursor positioned on sq.
func NewCursor(sq Square, dir Direction) Cursor {
	return Cursor{file: sq.File(), rank: sq.Rank(), dir: dir}
}

// Next advances the cursor one step and reports whether it is still on the board.
func (c *Cursor) Next() bool {
	df, dr := c.dir.Step()
	c.file += df
	c.rank += dr
	return OnBoard(c.file, c.rank)
}

// Square returns the current square, or NoSquare once the cursor has left the board.
func (c *Cursor) Square() Square {
	return NewSquare(c.file, c.rank)
}
