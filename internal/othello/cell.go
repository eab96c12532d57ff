package othello

import (
	"fmt"
	"strings"
)

// Cell is the content of a single square on the board.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

// Opponent returns the other color. Empty has no opponent and maps to itself.
func (c Cell) Opponent() Cell {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// IsPlayer reports whether the cell is one of the two player colors.
func (c Cell) IsPlayer() bool {
	return c == Black || c == White
}

// Symbol returns the single character used in text layouts.
func (c Cell) Symbol() byte {
	switch c {
	case Black:
		return 'B'
	case White:
		return 'W'
	default:
		return '.'
	}
}

func (c Cell) String() string {
	switch c {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "Empty"
	}
}

// normalize maps any value outside the enumeration to Empty.
func (c Cell) normalize() Cell {
	if c.IsPlayer() {
		return c
	}
	return Empty
}

// ParseCell parses a player color such as "B", "black", "W" or "white".
func ParseCell(s string) (Cell, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "black":
		return Black, nil
	case "w", "white":
		return White, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
	}
}

// cellFromSymbol reads a layout marker. Unknown markers are Empty.
func cellFromSymbol(r rune) Cell {
	switch r {
	case 'B', 'b':
		return Black
	case 'W', 'w':
		return White
	default:
		return Empty
	}
}

// WinStyle decides whether the most or the fewest discs win a finished game.
type WinStyle uint8

const (
	HighestWins WinStyle = iota + 1
	LowestWins
)

func (s WinStyle) valid() bool {
	return s == HighestWins || s == LowestWins
}

func (s WinStyle) String() string {
	switch s {
	case HighestWins:
		return ">"
	case LowestWins:
		return "<"
	default:
		return "?"
	}
}

// ParseWinStyle accepts ">" or "highest" and "<" or "lowest".
func ParseWinStyle(s string) (WinStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ">", "highest":
		return HighestWins, nil
	case "<", "lowest":
		return LowestWins, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidWinStyle, s)
	}
}

// Outcome is the result of a finished game.
type Outcome uint8

const (
	BlackWins Outcome = iota + 1
	WhiteWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case BlackWins:
		return "Black"
	case WhiteWins:
		return "White"
	case Draw:
		return "Draw"
	default:
		return "None"
	}
}

// Winner returns the winning color, or Empty for a draw.
func (o Outcome) Winner() Cell {
	switch o {
	case BlackWins:
		return Black
	case WhiteWins:
		return White
	default:
		return Empty
	}
}
