package board

import "fmt"

// Action moves one piece to a destination square.
// It is only valid against the Position it was generated from.
type Action struct {
	Piece Handle
	From  Square
	To    Square
}

// NoAction is the zero-information action used when no move exists.
var NoAction = Action{Piece: NoHandle, From: NoSquare, To: NoSquare}

// IsNull returns true for NoAction.
func (a Action) IsNull() bool {
	return a.Piece == NoHandle
}

// String returns the action as "from->to".
func (a Action) String() string {
	if a.IsNull() {
		return "none"
	}
	return a.From.String() + "->" + a.To.String()
}

// Actions returns the actions of the side to move.
func (p *Position) Actions() []Action {
	return p.Side(p.turn).Actions()
}

// ActionFrom builds the action moving the piece of the side to move that
// stands on from. It does not check that to is a legal destination.
func (p *Position) ActionFrom(from, to Square) (Action, error) {
	h, ok := p.Side(p.turn).Find(from)
	if !ok {
		return NoAction, fmt.Errorf("%w: no %s piece at %s", ErrPieceNotFound, p.turn, from)
	}
	if !to.IsValid() {
		return NoAction, fmt.Errorf("%w: destination off board", ErrIllegalAction)
	}
	return Action{Piece: h, From: from, To: to}, nil
}

// LegalAction is like ActionFrom but also requires to be one of the piece's movements.
func (p *Position) LegalAction(from, to Square) (Action, error) {
	a, err := p.ActionFrom(from, to)
	if err != nil {
		return NoAction, err
	}
	for _, sq := range p.Movements(a.Piece) {
		if sq == to {
			return a, nil
		}
	}
	return NoAction, fmt.Errorf("%w: %s cannot move %s", ErrIllegalAction, p.pieces[a.Piece], a)
}

// Apply returns the position after a. The receiver is never modified.
//
// The moving piece is relocated and any opponent piece on the destination
// is captured. Capturing a king ends the game: the capturer wins unless its
// own king is already gone, which is a draw. Two lone kings are a draw.
func (p *Position) Apply(a Action) (Position, error) {
	if p.terminal {
		return *p, ErrGameOver
	}
	if int(a.Piece) >= int(p.count) {
		return *p, fmt.Errorf("%w: handle %d", ErrPieceNotFound, a.Piece)
	}
	mover := p.pieces[a.Piece]
	if !mover.Alive || mover.sq != a.From {
		return *p, fmt.Errorf("%w: no live piece at %s", ErrPieceNotFound, a.From)
	}
	if mover.Owner != p.turn {
		return *p, fmt.Errorf("%w: %s piece moved on %s's turn", ErrIllegalAction, mover.Owner, p.turn)
	}
	if !a.To.IsValid() || a.To == a.From {
		return *p, fmt.Errorf("%w: destination %s", ErrIllegalAction, a.To)
	}

	next := *p
	kingCaptured := false
	if victim, ok := next.PieceAt(a.To); ok {
		if next.pieces[victim].Owner == mover.Owner {
			return *p, fmt.Errorf("%w: %s captures own piece", ErrIllegalAction, a)
		}
		kingCaptured = next.pieces[victim].Kind == King
		next.pieces[victim].Alive = false
		next.pieces[victim].sq = NoSquare
	}

	next.grid[a.From] = 0
	next.grid[a.To] = uint8(a.Piece) + 1
	next.pieces[a.Piece].sq = a.To

	switch {
	case kingCaptured && next.Side(mover.Owner).Count(King) == 0:
		next.setTerminal(NoOwner)
	case kingCaptured:
		next.setTerminal(mover.Owner)
	case next.loneKings():
		next.setTerminal(NoOwner)
	}

	next.turn = p.turn.Other()
	return next, nil
}

// MustApply is like Apply but panics on error.
func (p *Position) MustApply(a Action) Position {
	next, err := p.Apply(a)
	if err != nil {
		panic(err)
	}
	return next
}

// ApplyNull returns the position with no move made, marked as a drawn end.
// It is used when the side to move has no action.
func (p *Position) ApplyNull() Position {
	next := *p
	if !next.terminal {
		next.setTerminal(NoOwner)
	}
	return next
}
