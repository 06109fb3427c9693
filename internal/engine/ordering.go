package engine

import (
	"slices"

	"github.com/hailam/chessbot/internal/board"
)

// kingCaptureScore puts any capture of a king ahead of every other action.
const kingCaptureScore = 1000

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
// Score = victimValue * 10 - attackerValue
var mvvLva = [board.NumKinds][board.NumKinds]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {kingCaptureScore, kingCaptureScore, kingCaptureScore, kingCaptureScore, kingCaptureScore, kingCaptureScore},
}

// scoreAction rates an action of pos for ordering. Quiet actions score 0.
func scoreAction(pos *board.Position, a board.Action) int {
	h, ok := pos.PieceAt(a.To)
	if !ok {
		return 0
	}
	victim := pos.Piece(h)
	attacker := pos.Piece(a.Piece)
	return mvvLva[victim.Kind][attacker.Kind]
}

// orderActions sorts actions best-first in place. The sort is stable, so
// quiet actions keep their generation order.
//
// Only interior nodes are ordered. The root keeps generation order for the
// tie-break, and a root child that beats the running best gets its exact
// value in any interior order.
func orderActions(pos *board.Position, actions []board.Action) {
	if len(actions) < 2 {
		return
	}
	type scored struct {
		a     board.Action
		score int
	}
	list := make([]scored, len(actions))
	for i, a := range actions {
		list[i] = scored{a, scoreAction(pos, a)}
	}
	slices.SortStableFunc(list, func(x, y scored) int {
		return y.score - x.score
	})
	for i := range list {
		actions[i] = list[i].a
	}
}
