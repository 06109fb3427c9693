package board

import "fmt"

// Owner identifies which player a piece belongs to.
type Owner uint8

const (
	Bot Owner = iota
	Human
	NoOwner Owner = 2
)

// Other returns the opposing player.
func (o Owner) Other() Owner {
	return o ^ 1
}

// String returns the player name.
func (o Owner) String() string {
	switch o {
	case Bot:
		return "Bot"
	case Human:
		return "Human"
	default:
		return "None"
	}
}

// Forward returns the rank step of the owner's pawns.
// The bot advances towards increasing rank.
func (o Owner) Forward() int {
	if o == Bot {
		return 1
	}
	return -1
}

// PawnRank returns the rank the owner's pawns start on.
func (o Owner) PawnRank() int {
	if o == Bot {
		return 1
	}
	return BoardSize - 2
}

// Kind represents the type of a piece.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind Kind = 6
)

// NumKinds is the number of real piece kinds.
const NumKinds = int(NoKind)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// EmptyGlyph is the glyph of an empty square.
const EmptyGlyph = '□'

// glyphs holds the text glyph per owner and kind.
// The bot plays the black set, the human the white set.
var glyphs = [2][NumKinds]rune{
	Bot:   {'♟', '♞', '♝', '♜', '♛', '♚'},
	Human: {'♙', '♘', '♗', '♖', '♕', '♔'},
}

// Glyph returns the glyph for a piece of the given owner and kind.
func Glyph(o Owner, k Kind) rune {
	if o >= NoOwner || k >= NoKind {
		return EmptyGlyph
	}
	return glyphs[o][k]
}

// ParseGlyph converts a glyph back to owner and kind.
// ok is false for the empty glyph and for unknown runes.
func ParseGlyph(r rune) (o Owner, k Kind, ok bool) {
	for owner := Bot; owner <= Human; owner++ {
		for kind := Pawn; kind <= King; kind++ {
			if glyphs[owner][kind] == r {
				return owner, kind, true
			}
		}
	}
	return NoOwner, NoKind, false
}

// Handle indexes a piece inside a Position's arena.
type Handle uint8

// NoHandle marks the absence of a piece.
const NoHandle Handle = 0xFF

// Piece is one entry of the piece arena.
// A dead piece keeps its kind and owner but no longer has a square.
type Piece struct {
	Kind  Kind
	Owner Owner
	Alive bool
	sq    Square
}

// Square returns the square the piece stands on.
// It panics with ErrDeadPiece if the piece has been captured.
func (p Piece) Square() Square {
	if !p.Alive {
		panic(fmt.Errorf("%w: %s %s", ErrDeadPiece, p.Owner, p.Kind))
	}
	return p.sq
}

// Glyph returns the text glyph of the piece.
func (p Piece) Glyph() rune {
	return Glyph(p.Owner, p.Kind)
}

// String returns the glyph of the piece.
func (p Piece) String() string {
	return string(p.Glyph())
}
