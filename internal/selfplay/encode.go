package selfplay

import "github.com/lk16/reversi/internal/othello"

// Encode returns the board in row-major order from the point of view of player:
// own discs are 1, opponent discs are -1 and empty cells are 0.
func Encode(board *othello.Board, player othello.Cell) []float32 {
	state := make([]float32, 0, board.Rows()*board.Cols())

	for row := range board.Rows() {
		for col := range board.Cols() {
			switch board.At(row, col) {
			case player:
				state = append(state, 1)
			case player.Opponent():
				state = append(state, -1)
			default:
				state = append(state, 0)
			}
		}
	}

	return state
}

// Index converts a square to its position in an encoded state.
func Index(sq othello.Square, cols int) int {
	return sq.Row*cols + sq.Col
}

// SquareAt converts a position in an encoded state back to a square.
func SquareAt(index, cols int) othello.Square {
	return othello.Square{Row: index / cols, Col: index % cols}
}
