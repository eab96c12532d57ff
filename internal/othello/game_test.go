package othello

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newStartGame(t *testing.T) *Game {
	t.Helper()
	game, err := New(8, 8, Black, HighestWins)
	require.NoError(t, err)
	return game
}

func mustLayout(t *testing.T, first Cell, style WinStyle, lines ...string) *Game {
	t.Helper()
	layout := ParseLayout(lines)
	game, err := NewWithLayout(len(layout), len(layout[0]), first, style, layout)
	require.NoError(t, err)
	return game
}

func TestNew_BoardSize(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		wantErr bool
	}{
		{"smallest", 4, 4, false},
		{"largest", 16, 16, false},
		{"rectangular", 4, 10, false},
		{"standard", 8, 8, false},
		{"odd rows", 5, 8, true},
		{"odd cols", 8, 7, true},
		{"too small", 2, 2, true},
		{"too large", 18, 8, true},
		{"zero", 0, 0, true},
		{"negative", -4, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, err := New(tt.rows, tt.cols, Black, HighestWins)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidBoardSize)
				require.Nil(t, game)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.rows, game.Rows())
			require.Equal(t, tt.cols, game.Cols())
		})
	}
}

func TestNew_InvalidArguments(t *testing.T) {
	_, err := New(8, 8, Empty, HighestWins)
	require.ErrorIs(t, err, ErrInvalidPlayer)

	_, err = New(8, 8, Cell(7), HighestWins)
	require.ErrorIs(t, err, ErrInvalidPlayer)

	_, err = New(8, 8, White, WinStyle(0))
	require.ErrorIs(t, err, ErrInvalidWinStyle)

	_, err = New(8, 8, White, WinStyle(9))
	require.ErrorIs(t, err, ErrInvalidWinStyle)
}

func TestNew_StartPosition(t *testing.T) {
	for _, size := range [][2]int{{4, 4}, {6, 10}, {8, 8}, {16, 12}} {
		game, err := New(size[0], size[1], White, LowestWins)
		require.NoError(t, err)

		require.Equal(t, 2, game.BlackCount())
		require.Equal(t, 2, game.WhiteCount())
		require.Equal(t, White, game.Turn())
		require.Equal(t, LowestWins, game.Style())

		r, c := size[0]/2, size[1]/2
		board := game.Board()
		require.Equal(t, White, board.At(r-1, c-1))
		require.Equal(t, White, board.At(r, c))
		require.Equal(t, Black, board.At(r-1, c))
		require.Equal(t, Black, board.At(r, c-1))
	}

	game := newStartGame(t)
	require.Equal(t, Black, game.Board().At(3, 4))
	require.Equal(t, Black, game.Board().At(4, 3))
	require.Equal(t, White, game.Board().At(3, 3))
	require.Equal(t, White, game.Board().At(4, 4))
}

func TestNewWithLayout(t *testing.T) {
	layout := [][]Cell{
		{Black, White, Cell(42)},
		{Empty, Black},
	}

	game, err := NewWithLayout(4, 4, Black, HighestWins, layout)
	require.NoError(t, err)

	board := game.Board()
	require.Equal(t, Black, board.At(0, 0))
	require.Equal(t, White, board.At(0, 1))
	require.Equal(t, Empty, board.At(0, 2))
	require.Equal(t, Black, board.At(1, 1))
	require.Equal(t, Empty, board.At(3, 3))
	require.Equal(t, 2, game.BlackCount())
	require.Equal(t, 1, game.WhiteCount())

	// The layout is copied, not aliased.
	layout[0][0] = White
	require.Equal(t, Black, board.At(0, 0))
}

func TestNewWithLayout_TooLarge(t *testing.T) {
	tooManyRows := make([][]Cell, 5)
	_, err := NewWithLayout(4, 4, Black, HighestWins, tooManyRows)
	require.ErrorIs(t, err, ErrInvalidBoardSize)

	tooManyCols := [][]Cell{make([]Cell, 6)}
	_, err = NewWithLayout(4, 4, Black, HighestWins, tooManyCols)
	require.ErrorIs(t, err, ErrInvalidBoardSize)

	_, err = NewWithLayout(5, 4, Black, HighestWins, nil)
	require.ErrorIs(t, err, ErrInvalidBoardSize)
}

func TestGame_PlacementIsValid(t *testing.T) {
	game := newStartGame(t)

	require.Equal(t, []Square{{3, 3}}, game.PlacementIsValid(2, 3))
	require.Equal(t, []Square{{3, 3}}, game.PlacementIsValid(3, 2))
	require.Equal(t, []Square{{4, 4}}, game.PlacementIsValid(4, 5))
	require.Equal(t, []Square{{4, 4}}, game.PlacementIsValid(5, 4))

	// Occupied, capture-less and out of bounds squares.
	require.Empty(t, game.PlacementIsValid(3, 3))
	require.Empty(t, game.PlacementIsValid(0, 0))
	require.Empty(t, game.PlacementIsValid(2, 2))
	require.Empty(t, game.PlacementIsValid(-1, 3))
	require.Empty(t, game.PlacementIsValid(8, 3))
	require.Empty(t, game.PlacementIsValid(3, 100))
}

func TestGame_PlacementIsValid_MultipleDirections(t *testing.T) {
	game := mustLayout(t, Black, HighestWins,
		"B . B . B .",
		". W W W . .",
		"B W . W B .",
		". W W W . .",
		"B . B . B .",
		". . . . . .",
	)

	captures := game.PlacementIsValid(2, 2)
	require.Equal(t, []Square{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 3},
		{3, 1}, {3, 2}, {3, 3},
	}, captures)
}

func TestGame_PlacementIsValid_LongLine(t *testing.T) {
	game := mustLayout(t, White, HighestWins,
		". B B B B W",
		". . . . . .",
		". . . . . .",
		". . . . . .",
	)

	require.Equal(t, []Square{{0, 1}, {0, 2}, {0, 3}, {0, 4}}, game.PlacementIsValid(0, 0))
}

func TestGame_PlacementIsValid_EdgeWithoutAnchor(t *testing.T) {
	// The line of opponent discs runs off the board, so nothing is captured.
	game := mustLayout(t, White, HighestWins,
		". B B B B B",
		". . . . . .",
		". . . . . .",
		". . . . . .",
	)
	require.Empty(t, game.PlacementIsValid(0, 0))

	// An empty square interrupts the line.
	game = mustLayout(t, White, HighestWins,
		". B B . B W",
		". . . . . .",
		". . . . . .",
		". . . . . .",
	)
	require.Empty(t, game.PlacementIsValid(0, 0))

	// Own disc directly adjacent captures nothing.
	game = mustLayout(t, White, HighestWins,
		". W B B B W",
		". . . . . .",
		". . . . . .",
		". . . . . .",
	)
	require.Empty(t, game.PlacementIsValid(0, 0))
}

func TestGame_CapturesFor(t *testing.T) {
	game := newStartGame(t)
	before := game.Board().Clone()

	require.Equal(t, []Square{{3, 4}}, game.CapturesFor(White, 2, 4))
	require.Empty(t, game.CapturesFor(Black, 2, 4))
	require.Empty(t, game.CapturesFor(Empty, 2, 3))

	require.True(t, game.HasLegalMove(Black))
	require.True(t, game.HasLegalMove(White))
	require.True(t, before.Equal(game.Board()))
	require.Equal(t, Black, game.Turn())
}

func TestGame_LegalMoves(t *testing.T) {
	game := newStartGame(t)
	require.Equal(t, []Square{{2, 3}, {3, 2}, {4, 5}, {5, 4}}, game.LegalMoves())

	require.True(t, game.IsLegal(2, 3))
	require.False(t, game.IsLegal(2, 2))
}

func TestGame_ApplyMove(t *testing.T) {
	game := newStartGame(t)

	require.NoError(t, game.ApplyMove(2, 3))
	require.Equal(t, 4, game.BlackCount())
	require.Equal(t, 1, game.WhiteCount())
	require.Equal(t, Black, game.Board().At(2, 3))
	require.Equal(t, Black, game.Board().At(3, 3))

	// ApplyMove does not advance the turn.
	require.Equal(t, Black, game.Turn())
}

func TestGame_ApplyMove_FlipsExactlyCaptureSet(t *testing.T) {
	game := mustLayout(t, Black, HighestWins,
		"B . B . B .",
		". W W W . W",
		"B W . W B .",
		". W W W . .",
		"B . B . W .",
		". . . . . .",
	)

	before := game.Board().Clone()
	captures := game.PlacementIsValid(2, 2)
	require.NotEmpty(t, captures)

	captured := make(map[Square]bool)
	for _, sq := range captures {
		captured[sq] = true
	}

	require.NoError(t, game.ApplyMove(2, 2))

	after := game.Board()
	for row := range after.Rows() {
		for col := range after.Cols() {
			sq := Square{row, col}
			switch {
			case sq == (Square{2, 2}):
				require.Equal(t, Black, after.At(row, col))
			case captured[sq]:
				require.Equal(t, before.At(row, col).Opponent(), after.At(row, col), "square %s", sq)
			default:
				require.Equal(t, before.At(row, col), after.At(row, col), "square %s", sq)
			}
		}
	}

	// The down-right diagonal ends on Empty behind two white discs.
	require.False(t, captured[Square{3, 3}])
	require.Equal(t, White, after.At(3, 3))
	require.Equal(t, White, after.At(1, 5))
}

func TestGame_ApplyMove_Invalid(t *testing.T) {
	tests := []struct {
		name string
		row  int
		col  int
	}{
		{"occupied", 3, 3},
		{"no captures", 0, 0},
		{"diagonal neighbour without anchor", 2, 2},
		{"negative row", -1, 0},
		{"row too large", 8, 0},
		{"col too large", 0, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := newStartGame(t)
			before := game.Board().Clone()

			err := game.ApplyMove(tt.row, tt.col)
			require.ErrorIs(t, err, ErrInvalidMove)
			require.True(t, before.Equal(game.Board()))
			require.Equal(t, Black, game.Turn())
		})
	}
}

func TestGame_TakeTurn(t *testing.T) {
	game := newStartGame(t)

	// 1-based coordinates for 0-based (2, 3).
	require.NoError(t, game.TakeTurn(3, 4))
	require.Equal(t, 4, game.BlackCount())
	require.Equal(t, 1, game.WhiteCount())
	require.Equal(t, White, game.Turn())

	err := game.TakeTurn(1, 1)
	require.ErrorIs(t, err, ErrInvalidMove)
	require.Equal(t, White, game.Turn())

	err = game.TakeTurn(0, 0)
	require.ErrorIs(t, err, ErrInvalidMove)
}

func TestGame_TakeTurn_BoardFull(t *testing.T) {
	game := mustLayout(t, Black, HighestWins,
		"BBBB",
		"WWWW",
		"BBBB",
		"WWWW",
	)
	require.True(t, game.BoardIsFull())

	before := game.Board().Clone()
	err := game.TakeTurn(1, 1)
	require.ErrorIs(t, err, ErrGameFinished)
	require.True(t, before.Equal(game.Board()))
	require.Equal(t, Black, game.Turn())
}

func TestGame_ChangePlayer(t *testing.T) {
	game := newStartGame(t)

	game.ChangePlayer()
	require.Equal(t, White, game.Turn())

	game.ChangePlayer()
	require.Equal(t, Black, game.Turn())
}

func TestGame_BoardIsFull(t *testing.T) {
	game := newStartGame(t)
	require.False(t, game.BoardIsFull())

	board := game.Board()
	for row := range board.Rows() {
		for col := range board.Cols() {
			require.NoError(t, board.Set(row, col, White))
		}
	}
	require.True(t, game.BoardIsFull())
}

func TestGame_FindWinner(t *testing.T) {
	tests := []struct {
		name   string
		style  WinStyle
		layout []string
		want   Outcome
		done   bool
	}{
		{
			name:   "in progress",
			style:  HighestWins,
			layout: []string{"....", ".WB.", ".BW.", "...."},
			done:   false,
		},
		{
			name:   "black most discs",
			style:  HighestWins,
			layout: []string{"BBBB", "BBBB", "BBWW", "WWWW"},
			want:   BlackWins,
			done:   true,
		},
		{
			name:   "black most discs lowest wins",
			style:  LowestWins,
			layout: []string{"BBBB", "BBBB", "BBWW", "WWWW"},
			want:   WhiteWins,
			done:   true,
		},
		{
			name:   "white most discs",
			style:  HighestWins,
			layout: []string{"WWWW", "WWWW", "WWBB", "BBBB"},
			want:   WhiteWins,
			done:   true,
		},
		{
			name:   "white most discs lowest wins",
			style:  LowestWins,
			layout: []string{"WWWW", "WWWW", "WWBB", "BBBB"},
			want:   BlackWins,
			done:   true,
		},
		{
			name:   "draw highest",
			style:  HighestWins,
			layout: []string{"BBBB", "BBBB", "WWWW", "WWWW"},
			want:   Draw,
			done:   true,
		},
		{
			name:   "draw lowest",
			style:  LowestWins,
			layout: []string{"BBBB", "BBBB", "WWWW", "WWWW"},
			want:   Draw,
			done:   true,
		},
		{
			name:   "terminal with empty squares",
			style:  HighestWins,
			layout: []string{"B...", "....", "....", "...."},
			want:   BlackWins,
			done:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := mustLayout(t, Black, tt.style, tt.layout...)

			outcome, done := game.FindWinner()
			require.Equal(t, tt.done, done)
			if tt.done {
				require.Equal(t, tt.want, outcome)
			}
		})
	}
}

func TestGame_FindWinner_OpponentStillMoves(t *testing.T) {
	// Black to move has no capture, White captures (0,1) by playing (0,2).
	game := mustLayout(t, Black, HighestWins,
		"W B . .",
		". . . .",
		". . . .",
		". . . .",
	)

	require.False(t, game.HasLegalMove(Black))
	require.True(t, game.HasLegalMove(White))

	_, done := game.FindWinner()
	require.False(t, done)
	require.Equal(t, Black, game.Turn())
}

func TestGame_FindWinner_NonSquareBoard(t *testing.T) {
	// Only legal move lives in a column index larger than the row count.
	game := mustLayout(t, Black, HighestWins,
		"BBBBBBBBBB",
		"BBBBBBBBBB",
		"BBBBBBBBBB",
		"BBBBBBB.WB",
	)

	_, done := game.FindWinner()
	require.False(t, done)
}

func TestGame_PassIfBlocked(t *testing.T) {
	game := mustLayout(t, Black, HighestWins,
		"W B . .",
		". . . .",
		". . . .",
		". . . .",
	)

	require.True(t, game.PassIfBlocked())
	require.Equal(t, White, game.Turn())

	// White can move, so no pass happens.
	require.False(t, game.PassIfBlocked())
	require.Equal(t, White, game.Turn())

	// Neither side can move: no pass either.
	finished := mustLayout(t, Black, HighestWins, "B...", "....", "....", "....")
	require.False(t, finished.PassIfBlocked())
	require.Equal(t, Black, finished.Turn())
}

func TestGame_Copy(t *testing.T) {
	game := newStartGame(t)
	game.ChangePlayer()

	cp := game.Copy()
	require.True(t, game.Board().Equal(cp.Board()))
	require.Equal(t, game.Turn(), cp.Turn())
	require.Equal(t, game.Style(), cp.Style())
	require.Equal(t, game.Rows(), cp.Rows())
	require.Equal(t, game.Cols(), cp.Cols())

	require.NoError(t, cp.ApplyMove(2, 4))
	require.Equal(t, 2, game.WhiteCount())
	require.Equal(t, 4, cp.WhiteCount())

	require.NoError(t, game.Board().Set(0, 0, Black))
	require.Equal(t, Empty, cp.Board().At(0, 0))

	cp.ChangePlayer()
	require.Equal(t, White, game.Turn())
}

func TestGame_FlipBoard(t *testing.T) {
	game := mustLayout(t, Black, HighestWins,
		"B W . B",
		". W W .",
		"B . . W",
		". . B .",
	)
	before := game.Board().Clone()

	game.FlipBoard()
	require.Equal(t, before.Count(Black), game.WhiteCount())
	require.Equal(t, before.Count(White), game.BlackCount())
	require.Equal(t, White, game.Board().At(0, 0))
	require.Equal(t, Black, game.Board().At(0, 1))
	require.Equal(t, Empty, game.Board().At(0, 2))

	game.FlipBoard()
	require.True(t, before.Equal(game.Board()))
}

func TestGame_ASCIIArtLines(t *testing.T) {
	game, err := New(4, 4, Black, HighestWins)
	require.NoError(t, err)

	require.Equal(t, []string{
		"   +-a-b-c-d-+",
		" 1 |   ·     |",
		" 2 | · ○ ●   |",
		" 3 |   ● ○ · |",
		" 4 |     ·   |",
		"   +---------+",
	}, game.ASCIIArtLines())
}
