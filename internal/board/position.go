package board

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// MaxPieces is the capacity of the piece arena; one piece per square at most.
const MaxPieces = NumSquares

// Position is a complete game state.
//
// Pieces live in a fixed arena and are addressed by Handle; the grid maps
// squares to handles. Position holds no pointers, so assigning a Position
// copies the whole state and sibling search branches never share anything.
// The arena keeps captured pieces (Alive == false) so handles stay stable.
type Position struct {
	pieces [MaxPieces]Piece
	count  uint8

	// grid stores handle+1 per square, 0 meaning empty.
	grid [NumSquares]uint8

	turn     Owner
	terminal bool
	winner   Owner
}

// NewPosition returns the opening position with the human to move.
func NewPosition() Position {
	return ParseBoard(OpeningBoard, false)
}

// newEmptyPosition returns a board with no pieces and the given side to move.
func newEmptyPosition(turn Owner) Position {
	return Position{turn: turn, winner: NoOwner}
}

// addPiece appends a live piece to the arena and places it on sq.
func (p *Position) addPiece(kind Kind, owner Owner, sq Square) (Handle, error) {
	if !sq.IsValid() {
		return NoHandle, fmt.Errorf("%w: square %d", ErrInvalidBoard, sq)
	}
	if p.grid[sq] != 0 {
		return NoHandle, fmt.Errorf("%w: square %s already occupied", ErrInvalidBoard, sq)
	}
	if int(p.count) >= MaxPieces {
		return NoHandle, ErrTooManyPieces
	}
	h := Handle(p.count)
	p.pieces[h] = Piece{Kind: kind, Owner: owner, Alive: true, sq: sq}
	p.count++
	p.grid[sq] = uint8(h) + 1
	return h, nil
}

// NumHandles returns the number of pieces ever placed in the arena.
func (p *Position) NumHandles() int {
	return int(p.count)
}

// Piece returns the arena entry for h.
func (p *Position) Piece(h Handle) Piece {
	if int(h) >= int(p.count) {
		return Piece{Kind: NoKind, Owner: NoOwner}
	}
	return p.pieces[h]
}

// PieceAt returns the handle of the live piece on sq.
func (p *Position) PieceAt(sq Square) (Handle, bool) {
	if !sq.IsValid() || p.grid[sq] == 0 {
		return NoHandle, false
	}
	return Handle(p.grid[sq] - 1), true
}

// OwnerAt returns the owner of the piece on sq, or NoOwner if it is empty.
func (p *Position) OwnerAt(sq Square) Owner {
	h, ok := p.PieceAt(sq)
	if !ok {
		return NoOwner
	}
	return p.pieces[h].Owner
}

// IsEmpty returns true if no live piece stands on sq.
func (p *Position) IsEmpty(sq Square) bool {
	return sq.IsValid() && p.grid[sq] == 0
}

// Turn returns the player to move.
func (p *Position) Turn() Owner {
	return p.turn
}

// IsBotTurn returns true if the bot is to move.
func (p *Position) IsBotTurn() bool {
	return p.turn == Bot
}

// IsHumanTurn returns true if the human is to move.
func (p *Position) IsHumanTurn() bool {
	return p.turn == Human
}

// IsTerminal returns true once the game has ended.
func (p *Position) IsTerminal() bool {
	return p.terminal
}

// Winner returns the winning player, or NoOwner for a draw.
// It panics with ErrNotTerminal if the game has not ended.
func (p *Position) Winner() Owner {
	if !p.terminal {
		panic(ErrNotTerminal)
	}
	return p.winner
}

// IsDraw returns true if the game ended without a winner.
func (p *Position) IsDraw() bool {
	return p.terminal && p.winner == NoOwner
}

// Side returns the view of one player's pieces.
func (p *Position) Side(o Owner) Side {
	return Side{owner: o, pos: p}
}

// BotSide returns the bot's side.
func (p *Position) BotSide() Side {
	return p.Side(Bot)
}

// HumanSide returns the human's side.
func (p *Position) HumanSide() Side {
	return p.Side(Human)
}

// setTerminal marks the game over. The flag is never cleared.
func (p *Position) setTerminal(winner Owner) {
	p.terminal = true
	p.winner = winner
}

// loneKings returns true if each side has exactly one live piece and it is a king.
func (p *Position) loneKings() bool {
	var alive, kings [2]int
	for i := 0; i < int(p.count); i++ {
		pc := p.pieces[i]
		if !pc.Alive {
			continue
		}
		alive[pc.Owner]++
		if pc.Kind == King {
			kings[pc.Owner]++
		}
	}
	return alive[Bot] == 1 && alive[Human] == 1 && kings[Bot] == 1 && kings[Human] == 1
}

// classifyParsed derives the terminal state of a freshly parsed board.
// A side that is missing its king while the other still has one has lost.
// Boards without any king are free-form and never end by capture.
func (p *Position) classifyParsed() {
	botKings := p.BotSide().Count(King)
	humanKings := p.HumanSide().Count(King)
	switch {
	case botKings == 0 && humanKings > 0:
		p.setTerminal(Human)
	case humanKings == 0 && botKings > 0:
		p.setTerminal(Bot)
	case p.loneKings():
		p.setTerminal(NoOwner)
	}
}

// Key returns a hash of the occupancy and side to move.
// Positions with the same pieces on the same squares share a key.
func (p *Position) Key() uint64 {
	var buf [NumSquares + 1]byte
	for sq := Square(0); sq < NoSquare; sq++ {
		if h, ok := p.PieceAt(sq); ok {
			pc := p.pieces[h]
			buf[sq] = 1 + byte(pc.Owner)*byte(NumKinds) + byte(pc.Kind)
		}
	}
	buf[NumSquares] = byte(p.turn)
	return xxhash.Sum64(buf[:])
}

// Equal reports whether two positions have the same pieces on the same
// squares, the same side to move and the same terminal state.
func (p *Position) Equal(o *Position) bool {
	if p.turn != o.turn || p.terminal != o.terminal || (p.terminal && p.winner != o.winner) {
		return false
	}
	for sq := Square(0); sq < NoSquare; sq++ {
		a, aok := p.PieceAt(sq)
		b, bok := o.PieceAt(sq)
		if aok != bok {
			return false
		}
		if aok && (p.pieces[a].Kind != o.pieces[b].Kind || p.pieces[a].Owner != o.pieces[b].Owner) {
			return false
		}
	}
	return true
}
