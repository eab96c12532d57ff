package othello

import (
	"fmt"
	"strings"
)

// directions are scanned in this order, so capture sets are ordered by direction
// and then by distance from the placed piece.
var directions = [8]Square{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Game holds the board, the player to move and the win style.
// A Game is not safe for concurrent use; callers that need parallelism hold
// their own instance, for example through Copy.
type Game struct {
	board *Board
	turn  Cell
	style WinStyle
}

// New creates a game with the standard four disc opening at the board center.
func New(rows, cols int, first Cell, style WinStyle) (*Game, error) {
	game, err := newGame(rows, cols, first, style)
	if err != nil {
		return nil, err
	}

	r, c := rows/2, cols/2
	game.board.set(Square{r - 1, c - 1}, White)
	game.board.set(Square{r, c}, White)
	game.board.set(Square{r - 1, c}, Black)
	game.board.set(Square{r, c - 1}, Black)

	return game, nil
}

// NewWithLayout creates a game with a custom start position. Cells not covered by the
// layout stay Empty and values other than Black or White are installed as Empty.
func NewWithLayout(rows, cols int, first Cell, style WinStyle, layout [][]Cell) (*Game, error) {
	game, err := newGame(rows, cols, first, style)
	if err != nil {
		return nil, err
	}

	if len(layout) > rows {
		return nil, fmt.Errorf("%w: layout has %d rows, board has %d", ErrInvalidBoardSize, len(layout), rows)
	}

	for row, cells := range layout {
		if len(cells) > cols {
			return nil, fmt.Errorf("%w: layout row %d has %d columns, board has %d",
				ErrInvalidBoardSize, row, len(cells), cols)
		}

		for col, cell := range cells {
			game.board.set(Square{row, col}, cell.normalize())
		}
	}

	return game, nil
}

func newGame(rows, cols int, first Cell, style WinStyle) (*Game, error) {
	if !validSize(rows) || !validSize(cols) {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidBoardSize, rows, cols)
	}

	if !first.IsPlayer() {
		return nil, fmt.Errorf("%w: first player must be Black or White, got %d", ErrInvalidPlayer, first)
	}

	if !style.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWinStyle, style)
	}

	return &Game{
		board: newBoard(rows, cols),
		turn:  first,
		style: style,
	}, nil
}

// Board returns the live board. Writes through it bypass move validation.
func (g *Game) Board() *Board {
	return g.board
}

// Rows returns the number of rows.
func (g *Game) Rows() int {
	return g.board.rows
}

// Cols returns the number of columns.
func (g *Game) Cols() int {
	return g.board.cols
}

// Turn returns the player to move.
func (g *Game) Turn() Cell {
	return g.turn
}

// Style returns the win style.
func (g *Game) Style() WinStyle {
	return g.style
}

// BlackCount returns the number of black discs.
func (g *Game) BlackCount() int {
	return g.board.Count(Black)
}

// WhiteCount returns the number of white discs.
func (g *Game) WhiteCount() int {
	return g.board.Count(White)
}

// Count returns the number of discs of the given color.
func (g *Game) Count(player Cell) int {
	return g.board.Count(player)
}

// BoardIsFull reports whether no Empty cell remains.
func (g *Game) BoardIsFull() bool {
	return g.board.IsFull()
}

// Copy returns an independent game with a deep copy of the board.
func (g *Game) Copy() *Game {
	return &Game{
		board: g.board.Clone(),
		turn:  g.turn,
		style: g.style,
	}
}

// FlipBoard swaps the color of every disc in place. Applying it twice restores the board.
func (g *Game) FlipBoard() {
	g.board.swapColors()
}

// ChangePlayer passes the turn to the other player unconditionally.
func (g *Game) ChangePlayer() {
	g.turn = g.turn.Opponent()
}

// PlacementIsValid returns the discs the current player would flip by playing on
// (row, col). An empty result means the move is not legal, which includes occupied
// and out of bounds squares.
func (g *Game) PlacementIsValid(row, col int) []Square {
	return g.CapturesFor(g.turn, row, col)
}

// CapturesFor returns the discs player would flip by playing on (row, col).
// The board is only read, so this also answers legality for the player not to move.
func (g *Game) CapturesFor(player Cell, row, col int) []Square {
	if !player.IsPlayer() || !g.board.InBounds(row, col) || g.board.At(row, col) != Empty {
		return nil
	}

	var captures []Square
	for _, dir := range directions {
		captures = append(captures, g.capturesInDirection(player, row, col, dir)...)
	}
	return captures
}

// capturesInDirection returns the opponent discs between (row, col) and the next disc
// of player along dir, or nil if the line runs off the board or hits Empty first.
func (g *Game) capturesInDirection(player Cell, row, col int, dir Square) []Square {
	opponent := player.Opponent()

	var line []Square
	for r, c := row+dir.Row, col+dir.Col; g.board.InBounds(r, c); r, c = r+dir.Row, c+dir.Col {
		switch g.board.At(r, c) {
		case opponent:
			line = append(line, Square{r, c})
		case player:
			return line
		default:
			return nil
		}
	}
	return nil
}

// IsLegal reports whether the current player may play on (row, col).
func (g *Game) IsLegal(row, col int) bool {
	return len(g.PlacementIsValid(row, col)) > 0
}

// LegalMoves returns all squares the current player may play on, in row-major order.
func (g *Game) LegalMoves() []Square {
	var moves []Square
	for row := range g.board.rows {
		for col := range g.board.cols {
			if g.IsLegal(row, col) {
				moves = append(moves, Square{row, col})
			}
		}
	}
	return moves
}

// HasLegalMove reports whether player has at least one legal move anywhere.
func (g *Game) HasLegalMove(player Cell) bool {
	for row := range g.board.rows {
		for col := range g.board.cols {
			if len(g.CapturesFor(player, row, col)) > 0 {
				return true
			}
		}
	}
	return false
}

// ApplyMove plays the current player's disc on the 0-based square (row, col) and flips
// the captured discs. It does not change the turn. On error the board is unchanged.
func (g *Game) ApplyMove(row, col int) error {
	captures := g.PlacementIsValid(row, col)
	if len(captures) == 0 {
		return fmt.Errorf("%w: (%d, %d) for %s", ErrInvalidMove, row, col, g.turn)
	}

	g.board.set(Square{row, col}, g.turn)
	for _, sq := range captures {
		g.board.set(sq, g.board.At(sq.Row, sq.Col).Opponent())
	}

	return nil
}

// TakeTurn plays a move given in 1-based coordinates and passes the turn.
func (g *Game) TakeTurn(row, col int) error {
	if g.BoardIsFull() {
		return ErrGameFinished
	}

	if err := g.ApplyMove(row-1, col-1); err != nil {
		return err
	}

	g.ChangePlayer()
	return nil
}

// PassIfBlocked passes the turn when the current player has no legal move but the
// opponent does. It returns true if the turn was passed.
func (g *Game) PassIfBlocked() bool {
	if g.HasLegalMove(g.turn) || !g.HasLegalMove(g.turn.Opponent()) {
		return false
	}

	g.ChangePlayer()
	return true
}

// FindWinner returns the outcome once neither player can move. The second return
// value is false while the game is still in progress.
func (g *Game) FindWinner() (Outcome, bool) {
	if g.HasLegalMove(Black) || g.HasLegalMove(White) {
		return 0, false
	}

	black, white := g.BlackCount(), g.WhiteCount()
	if black == white {
		return Draw, true
	}

	blackAhead := black > white
	if g.style == LowestWins {
		blackAhead = !blackAhead
	}

	if blackAhead {
		return BlackWins, true
	}
	return WhiteWins, true
}

// ASCIIArtLines returns the board framed with coordinates, marking legal moves of the
// current player with a dot.
func (g *Game) ASCIIArtLines() []string {
	cols := g.board.cols

	var header strings.Builder
	header.WriteString("   +")
	for col := range cols {
		header.WriteString(fmt.Sprintf("-%c", 'a'+rune(col)))
	}
	header.WriteString("-+")

	lines := make([]string, 0, g.board.rows+2)
	lines = append(lines, header.String())

	for row := range g.board.rows {
		line := fmt.Sprintf("%2d | ", row+1)

		for col := range cols {
			switch {
			case g.board.At(row, col) == White:
				line += "○ "
			case g.board.At(row, col) == Black:
				line += "● "
			case g.IsLegal(row, col):
				line += "· "
			default:
				line += "  "
			}
		}

		lines = append(lines, line+"|")
	}

	lines = append(lines, "   +"+strings.Repeat("-", 2*cols+1)+"+")
	return lines
}

// Print prints the board to the console. This is used for debugging.
func (g *Game) Print() {
	for _, line := range g.ASCIIArtLines() {
		fmt.Println(line)
	}
}

// String returns the layout followed by the player to move.
func (g *Game) String() string {
	return fmt.Sprintf("%s\nturn: %s", g.board.String(), g.turn)
}
