package othello

import "errors"

var (
	ErrInvalidBoardSize = errors.New("board has to be even dimensions from 4 to 16")
	ErrInvalidPlayer    = errors.New("invalid player")
	ErrInvalidWinStyle  = errors.New("invalid win style")
	ErrInvalidMove      = errors.New("invalid move")
	ErrGameFinished     = errors.New("game is finished")
	ErrOutOfBounds      = errors.New("square is out of bounds")
)
