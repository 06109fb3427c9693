package engine

import "errors"

var (
	ErrInvalidLevel     = errors.New("intelligence level must be at least 1")
	ErrTerminalPosition = errors.New("position is terminal")
)
