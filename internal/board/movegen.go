package board

// moveRule generates destination squares for the piece h and appends them to dst.
type moveRule func(p *Position, h Handle, pc Piece, dst []Square) []Square

// moveRules is the movement table keyed by Kind.
var moveRules = [NumKinds]moveRule{
	Pawn:   pawnMoves,
	Knight: knightMoves,
	Bishop: slidingMoves(Diagonals),
	Rook:   slidingMoves(Orthogonals),
	Queen:  slidingMoves(AllDirs),
	King:   kingMoves,
}

// knightOffsets are the file and rank jumps of a knight.
var knightOffsets = [8][2]int{
	{-1, -2}, {-1, 2}, {1, -2}, {1, 2},
	{-2, -1}, {-2, 1}, {2, -1}, {2, 1},
}

// Movements returns the destination squares of the live piece h.
// Squares occupied by the piece's own side are never included; squares
// occupied by the opponent are captures.
func (p *Position) Movements(h Handle) []Square {
	pc := p.Piece(h)
	if !pc.Alive || pc.Kind >= NoKind {
		return nil
	}
	return moveRules[pc.Kind](p, h, pc, nil)
}

// slidingMoves builds the rule for a piece that slides along dirs.
// A ray stops at the board edge, before an own piece, or on a captured opponent piece.
func slidingMoves(dirs []Direction) moveRule {
	return func(p *Position, h Handle, pc Piece, dst []Square) []Square {
		for _, dir := range dirs {
			cur := NewCursor(pc.sq, dir)
			for cur.Next() {
				sq := cur.Square()
				occupant := p.OwnerAt(sq)
				if occupant == pc.Owner {
					break
				}
				dst = append(dst, sq)
				if occupant != NoOwner {
					break
				}
			}
		}
		return dst
	}
}

func knightMoves(p *Position, h Handle, pc Piece, dst []Square) []Square {
	file, rank := pc.sq.File(), pc.sq.Rank()
	for _, off := range knightOffsets {
		sq := NewSquare(file+off[0], rank+off[1])
		if sq == NoSquare || p.OwnerAt(sq) == pc.Owner {
			continue
		}
		dst = append(dst, sq)
	}
	return dst
}

func kingMoves(p *Position, h Handle, pc Piece, dst []Square) []Square {
	file, rank := pc.sq.File(), pc.sq.Rank()
	for _, dir := range AllDirs {
		df, dr := dir.Step()
		sq := NewSquare(file+df, rank+dr)
		if sq == NoSquare || p.OwnerAt(sq) == pc.Owner {
			continue
		}
		dst = append(dst, sq)
	}
	return dst
}

// pawnMoves generates single and double pushes onto empty squares and
// diagonal captures onto opponent pieces. A pawn on the last rank is stuck.
func pawnMoves(p *Position, h Handle, pc Piece, dst []Square) []Square {
	file, rank := pc.sq.File(), pc.sq.Rank()
	fwd := pc.Owner.Forward()

	one := NewSquare(file, rank+fwd)
	if one != NoSquare && p.IsEmpty(one) {
		dst = append(dst, one)
		if rank == pc.Owner.PawnRank() {
			two := NewSquare(file, rank+2*fwd)
			if two != NoSquare && p.IsEmpty(two) {
				dst = append(dst, two)
			}
		}
	}

	enemy := pc.Owner.Other()
	for _, df := range [2]int{-1, 1} {
		sq := NewSquare(file+df, rank+fwd)
		if sq != NoSquare && p.OwnerAt(sq) == enemy {
			dst = append(dst, sq)
		}
	}
	return dst
}
