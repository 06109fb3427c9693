package board

// Side is a read-only view of one player's pieces inside a Position.
// Pieces reference their owner by value, so a copied Position carries
// its own sides and nothing points back at the original.
type Side struct {
	owner Owner
	pos   *Position
}

// Owner returns the player this side belongs to.
func (s Side) Owner() Owner {
	return s.owner
}

// IsBot returns true for the bot's side.
func (s Side) IsBot() bool {
	return s.owner == Bot
}

// Opponent returns the other player's side of the same position.
func (s Side) Opponent() Side {
	return Side{owner: s.owner.Other(), pos: s.pos}
}

// Pieces returns the handles of the side's live pieces in arena order.
func (s Side) Pieces() []Handle {
	var out []Handle
	for i := 0; i < int(s.pos.count); i++ {
		pc := s.pos.pieces[i]
		if pc.Alive && pc.Owner == s.owner {
			out = append(out, Handle(i))
		}
	}
	return out
}

// IsOccupied returns true if one of the side's live pieces stands on sq.
func (s Side) IsOccupied(sq Square) bool {
	return s.pos.OwnerAt(sq) == s.owner
}

// Find returns the handle of the side's piece on sq.
func (s Side) Find(sq Square) (Handle, bool) {
	h, ok := s.pos.PieceAt(sq)
	if !ok || s.pos.pieces[h].Owner != s.owner {
		return NoHandle, false
	}
	return h, true
}

// Count returns the number of live pieces of kind k.
func (s Side) Count(k Kind) int {
	n := 0
	for i := 0; i < int(s.pos.count); i++ {
		pc := s.pos.pieces[i]
		if pc.Alive && pc.Owner == s.owner && pc.Kind == k {
			n++
		}
	}
	return n
}

// pawnFiles returns the number of live pawns on each file.
func (s Side) pawnFiles() [BoardSize]int {
	var files [BoardSize]int
	for i := 0; i < int(s.pos.count); i++ {
		pc := s.pos.pieces[i]
		if pc.Alive && pc.Owner == s.owner && pc.Kind == Pawn {
			files[pc.sq.File()]++
		}
	}
	return files
}

// CountDoubledPawns returns the number of pawns beyond the first on each file.
func (s Side) CountDoubledPawns() int {
	n := 0
	for _, c := range s.pawnFiles() {
		if c > 1 {
			n += c - 1
		}
	}
	return n
}

// CountBlockedPawns returns the number of pawns whose square ahead is
// occupied by either side.
func (s Side) CountBlockedPawns() int {
	n := 0
	fwd := s.owner.Forward()
	for i := 0; i < int(s.pos.count); i++ {
		pc := s.pos.pieces[i]
		if !pc.Alive || pc.Owner != s.owner || pc.Kind != Pawn {
			continue
		}
		ahead := NewSquare(pc.sq.File(), pc.sq.Rank()+fwd)
		if ahead != NoSquare && !s.pos.IsEmpty(ahead) {
			n++
		}
	}
	return n
}

// CountIsolatedPawns returns the number of pawns with no other own pawn on
// the same or an adjacent file.
func (s Side) CountIsolatedPawns() int {
	files := s.pawnFiles()
	n := 0
	for f, c := range files {
		if c == 0 {
			continue
		}
		neighbours := c - 1
		if f > 0 {
			neighbours += files[f-1]
		}
		if f < BoardSize-1 {
			neighbours += files[f+1]
		}
		if neighbours == 0 {
			n += c
		}
	}
	return n
}

// CountWeakPawns returns doubled + blocked + isolated pawns.
func (s Side) CountWeakPawns() int {
	return s.CountDoubledPawns() + s.CountBlockedPawns() + s.CountIsolatedPawns()
}

// Actions returns every movement of every live piece, paired with the piece.
// Order is arena order, then movement-rule order.
func (s Side) Actions() []Action {
	var actions []Action
	var buf []Square
	for i := 0; i < int(s.pos.count); i++ {
		pc := s.pos.pieces[i]
		if !pc.Alive || pc.Owner != s.owner {
			continue
		}
		buf = moveRules[pc.Kind](s.pos, Handle(i), pc, buf[:0])
		for _, to := range buf {
			actions = append(actions, Action{Piece: Handle(i), From: pc.sq, To: to})
		}
	}
	return actions
}

// CountActions returns len(Actions()) without building the list.
func (s Side) CountActions() int {
	n := 0
	var buf []Square
	for i := 0; i < int(s.pos.count); i++ {
		pc := s.pos.pieces[i]
		if !pc.Alive || pc.Owner != s.owner {
			continue
		}
		buf = moveRules[pc.Kind](s.pos, Handle(i), pc, buf[:0])
		n += len(buf)
	}
	return n
}
