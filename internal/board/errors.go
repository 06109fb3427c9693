package board

import "errors"

var (
	ErrPieceNotFound = errors.New("piece not found")
	ErrIllegalAction = errors.New("illegal action")
	ErrGameOver      = errors.New("game is over")
	ErrNotTerminal   = errors.New("position is not terminal")
	ErrDeadPiece     = errors.New("piece is dead and has no square")
	ErrInvalidBoard  = errors.New("invalid board")
	ErrTooManyPieces = errors.New("too many pieces")
)
