package othello

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
)

const (
	MinSize = 4
	MaxSize = 16

	DefaultSize = 8
)

// Square is a 0-based board coordinate.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns the square in field notation, e.g. "c4" for row 3, column 2.
func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(s.Col), s.Row+1)
}

// ParseSquare converts a field notation (e.g. "a1", "p16") to a 0-based square.
func ParseSquare(field string) (Square, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if len(field) < 2 || len(field) > 3 {
		return Square{}, fmt.Errorf("invalid field length: %q", field)
	}

	col := int(field[0]) - 'a'
	if col < 0 || col >= MaxSize {
		return Square{}, fmt.Errorf("invalid field column: %q", field)
	}

	row := 0
	for _, r := range field[1:] {
		if r < '0' || r > '9' {
			return Square{}, fmt.Errorf("invalid field row: %q", field)
		}
		row = row*10 + int(r-'0')
	}

	if row < 1 || row > MaxSize {
		return Square{}, fmt.Errorf("invalid field row: %q", field)
	}

	return Square{Row: row - 1, Col: col}, nil
}

// validSize reports whether n can be used as a row or column count.
func validSize(n int) bool {
	return n >= MinSize && n <= MaxSize && n%2 == 0
}

// Board is a fixed size grid of cells. Its dimensions never change after construction.
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

func newBoard(rows, cols int) *Board {
	return &Board{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// Rows returns the number of rows.
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns.
func (b *Board) Cols() int {
	return b.cols
}

// InBounds reports whether (row, col) lies on the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// At returns the cell at (row, col). Squares off the board read as Empty.
func (b *Board) At(row, col int) Cell {
	if !b.InBounds(row, col) {
		return Empty
	}
	return b.cells[row*b.cols+col]
}

// Set writes a cell without any move validation. It is meant for arranging
// starting pieces before a game, not for playing moves.
func (b *Board) Set(row, col int, cell Cell) error {
	if !b.InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d) on %dx%d board", ErrOutOfBounds, row, col, b.rows, b.cols)
	}
	b.cells[row*b.cols+col] = cell.normalize()
	return nil
}

func (b *Board) set(sq Square, cell Cell) {
	b.cells[sq.Row*b.cols+sq.Col] = cell
}

// Clear empties every cell.
func (b *Board) Clear() {
	clear(b.cells)
}

// Count returns the number of cells holding the given value.
func (b *Board) Count(cell Cell) int {
	count := 0
	for _, c := range b.cells {
		if c == cell {
			count++
		}
	}
	return count
}

// IsFull reports whether no Empty cell remains.
func (b *Board) IsFull() bool {
	return !slices.Contains(b.cells, Empty)
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	return &Board{
		rows:  b.rows,
		cols:  b.cols,
		cells: slices.Clone(b.cells),
	}
}

// Equal checks if two boards have the same dimensions and contents.
func (b *Board) Equal(other *Board) bool {
	return b.rows == other.rows && b.cols == other.cols && slices.Equal(b.cells, other.cells)
}

// swapColors exchanges every Black cell for White and vice versa.
func (b *Board) swapColors() {
	for i, c := range b.cells {
		b.cells[i] = c.Opponent()
	}
}

// Cells returns the board as rows of cells. The result is a copy.
func (b *Board) Cells() [][]Cell {
	rows := make([][]Cell, b.rows)
	for row := range b.rows {
		rows[row] = slices.Clone(b.cells[row*b.cols : (row+1)*b.cols])
	}
	return rows
}

// Lines renders one line of space separated markers per row, e.g. ". B W .".
func (b *Board) Lines() []string {
	lines := make([]string, b.rows)
	for row := range b.rows {
		var builder strings.Builder
		for col := range b.cols {
			if col > 0 {
				builder.WriteByte(' ')
			}
			builder.WriteByte(b.At(row, col).Symbol())
		}
		lines[row] = builder.String()
	}
	return lines
}

// String returns the layout lines joined by newlines.
func (b *Board) String() string {
	return strings.Join(b.Lines(), "\n")
}

// ParseLayout reads a layout from text lines. Each non-blank line is a row;
// 'B' and 'W' are pieces, any other marker is Empty and spaces are ignored.
func ParseLayout(lines []string) [][]Cell {
	layout := make([][]Cell, 0, len(lines))
	for _, line := range lines {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line == "" {
			continue
		}

		row := make([]Cell, 0, len(line))
		for _, r := range line {
			row = append(row, cellFromSymbol(r))
		}
		layout = append(layout, row)
	}
	return layout
}

// ReadLayoutFile reads a layout in the ParseLayout format from a text file.
func ReadLayoutFile(path string) ([][]Cell, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	return ParseLayout(lines), nil
}
