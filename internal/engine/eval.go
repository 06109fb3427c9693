// Package engine implements the evaluation and minimax search of the bot.
package engine

import (
	"fmt"

	"github.com/hailam/chessbot/internal/board"
)

// Material weights
const (
	KingWeight  = 200.0
	QueenWeight = 9.0
	RookWeight  = 5.0
	MinorWeight = 3.0 // Bishop and Knight
	PawnWeight  = 1.0
)

const (
	StructureWeight = 0.5 // Per doubled, blocked or isolated pawn
	MobilityWeight  = 0.1 // Per legal action
)

// UtilityScore is the value of a won game.
// It must exceed any Evaluate result so a forced win outranks every heuristic score.
const UtilityScore = 1e6

// Utility returns the exact value of a finished game from the bot's point of view.
// It panics with board.ErrNotTerminal if the game is still running.
func Utility(pos *board.Position) float64 {
	if !pos.IsTerminal() {
		panic(board.ErrNotTerminal)
	}
	switch pos.Winner() {
	case board.Bot:
		return UtilityScore
	case board.Human:
		return -UtilityScore
	default:
		return 0
	}
}

// Evaluate returns the heuristic value of a running game, positive when the
// bot is ahead. It panics with ErrTerminalPosition on a finished game.
func Evaluate(pos *board.Position) float64 {
	if pos.IsTerminal() {
		panic(ErrTerminalPosition)
	}

	bot := pos.BotSide()
	human := pos.HumanSide()

	diff := func(k board.Kind) float64 {
		return float64(bot.Count(k) - human.Count(k))
	}

	score := KingWeight*diff(board.King) +
		QueenWeight*diff(board.Queen) +
		RookWeight*diff(board.Rook) +
		MinorWeight*(diff(board.Bishop)+diff(board.Knight)) +
		PawnWeight*diff(board.Pawn)

	score -= StructureWeight * float64(bot.CountWeakPawns()-human.CountWeakPawns())
	score += MobilityWeight * float64(bot.CountActions()-human.CountActions())

	return score
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score float64) string {
	switch {
	case score >= UtilityScore:
		return "Bot wins"
	case score <= -UtilityScore:
		return "Human wins"
	default:
		return fmt.Sprintf("%+.2f", score)
	}
}
