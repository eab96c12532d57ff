package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/othello"
	"github.com/rivo/tview"
)

const (
	// Row labels take two columns plus a space.
	boardLeft = 3
	boardTop  = 1
)

const (
	styleBoard = iota
	styleBoardAlt
	styleBlack
	styleWhite
	styleCursor
	styleLegalMove
	styleLastPlayed
)

// BoardView draws the session board and translates keys and clicks into session calls.
type BoardView struct {
	*tview.Box

	session *Session
	cfg     *config.UIConfig
	styles  []tcell.Color
	status  *tview.TextView
	cursor  othello.Square
	quit    func()
}

func NewBoardView(session *Session, cfg *config.UIConfig, status *tview.TextView, quit func()) *BoardView {
	v := &BoardView{
		Box:     tview.NewBox(),
		session: session,
		cfg:     cfg,
		status:  status,
		quit:    quit,
		styles: []tcell.Color{
			tcell.PaletteColor(cfg.Colors.Board),      // styleBoard
			tcell.PaletteColor(cfg.Colors.BoardAlt),   // styleBoardAlt
			tcell.PaletteColor(cfg.Colors.Black),      // styleBlack
			tcell.PaletteColor(cfg.Colors.White),      // styleWhite
			tcell.PaletteColor(cfg.Colors.Cursor),     // styleCursor
			tcell.PaletteColor(cfg.Colors.LegalMove),  // styleLegalMove
			tcell.PaletteColor(cfg.Colors.LastPlayed), // styleLastPlayed
		},
	}

	board := session.Game().Board()
	v.cursor = othello.Square{Row: board.Rows()/2 - 1, Col: board.Cols()/2 - 1}

	v.SetDrawFunc(v.draw)
	v.SetInputCapture(v.HandleKey)
	v.SetMouseCapture(v.handleMouse)
	v.refreshStatus()
	return v
}

func (v *BoardView) Cursor() othello.Square {
	return v.cursor
}

func (v *BoardView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	game := v.session.Game()
	board := game.Board()

	for col := range board.Cols() {
		screen.SetContent(x+boardLeft+col*2, y, rune('a'+col), nil, tcell.StyleDefault)
	}

	for row := range board.Rows() {
		label := fmt.Sprintf("%2d", row+1)
		screen.SetContent(x, y+boardTop+row, rune(label[0]), nil, tcell.StyleDefault)
		screen.SetContent(x+1, y+boardTop+row, rune(label[1]), nil, tcell.StyleDefault)

		for col := range board.Cols() {
			r, style := v.cellStyle(game, row, col)
			screen.SetContent(x+boardLeft+col*2, y+boardTop+row, r, nil, style)
			screen.SetContent(x+boardLeft+col*2+1, y+boardTop+row, ' ', nil, style)
		}
	}

	return x, y, width, height
}

func (v *BoardView) cellStyle(game *othello.Game, row, col int) (rune, tcell.Style) {
	background := v.styles[styleBoard]
	if (row+col)%2 == 1 {
		background = v.styles[styleBoardAlt]
	}

	if last := v.session.LastMove(); last != nil && last.Row == row && last.Col == col {
		background = v.styles[styleLastPlayed]
	}
	if v.cursor.Row == row && v.cursor.Col == col && v.session.Phase() != PhaseFinished {
		background = v.styles[styleCursor]
	}

	style := tcell.StyleDefault.Background(background)

	switch game.Board().At(row, col) {
	case othello.Black:
		return v.cfg.Symbols.Disc, style.Foreground(v.styles[styleBlack])
	case othello.White:
		return v.cfg.Symbols.Disc, style.Foreground(v.styles[styleWhite])
	}

	if v.cfg.ShowLegalMoves && v.session.Phase() == PhasePlay && game.IsLegal(row, col) {
		return v.cfg.Symbols.LegalMove, style.Foreground(v.styles[styleLegalMove])
	}
	return v.cfg.Symbols.Empty, style
}

// cellAt converts screen coordinates to a board square.
func (v *BoardView) cellAt(screenX, screenY int) (othello.Square, bool) {
	x, y, _, _ := v.GetRect()
	sq := othello.Square{
		Row: screenY - y - boardTop,
		Col: (screenX - x - boardLeft) / 2,
	}

	if screenX < x+boardLeft || !v.session.Game().Board().InBounds(sq.Row, sq.Col) {
		return othello.Square{}, false
	}
	return sq, true
}

func (v *BoardView) moveCursor(dRow, dCol int) {
	next := othello.Square{Row: v.cursor.Row + dRow, Col: v.cursor.Col + dCol}
	if v.session.Game().Board().InBounds(next.Row, next.Col) {
		v.cursor = next
	}
}

// activate places a setup piece or plays a move on the cursor.
func (v *BoardView) activate() {
	switch v.session.Phase() {
	case PhaseSetup:
		_ = v.session.Place(v.cursor.Row, v.cursor.Col)
	case PhasePlay:
		_, _ = v.session.Play(v.cursor.Row, v.cursor.Col)
	}
}

// HandleKey is the input capture of the board. Handled keys are consumed.
func (v *BoardView) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		v.moveCursor(-1, 0)
	case tcell.KeyDown:
		v.moveCursor(1, 0)
	case tcell.KeyLeft:
		v.moveCursor(0, -1)
	case tcell.KeyRight:
		v.moveCursor(0, 1)
	case tcell.KeyEnter:
		v.activate()
	case tcell.KeyEscape:
		v.quit()
	case tcell.KeyRune:
		if !v.handleRune(event.Rune()) {
			return event
		}
	default:
		return event
	}

	v.refreshStatus()
	return nil
}

func (v *BoardView) handleRune(r rune) bool {
	switch r {
	case 'k':
		v.moveCursor(-1, 0)
	case 'j':
		v.moveCursor(1, 0)
	case 'h':
		v.moveCursor(0, -1)
	case 'l':
		v.moveCursor(0, 1)
	case ' ':
		v.activate()
	case 'c':
		v.session.ToggleSetupColor()
	case 'x':
		v.session.ClearBoard()
	case 's':
		if v.session.Phase() == PhaseSetup {
			v.session.StartPlay()
		}
	case 'u':
		v.session.Undo()
	case 'n':
		v.session.Restart()
	case 'q':
		v.quit()
	default:
		return false
	}
	return true
}

func (v *BoardView) handleMouse(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
	if action != tview.MouseLeftClick {
		return action, event
	}

	sq, ok := v.cellAt(event.Position())
	if !ok {
		return action, event
	}

	v.cursor = sq
	v.activate()
	v.refreshStatus()
	return action, nil
}

func (v *BoardView) refreshStatus() {
	if v.status == nil {
		return
	}

	var controls string
	switch v.session.Phase() {
	case PhaseSetup:
		controls = "⏎/click toggle piece   c color   x clear   s start"
	case PhasePlay:
		controls = "⏎/click play   u undo   n restart"
	default:
		controls = "u undo   n restart"
	}

	v.status.SetText(fmt.Sprintf("  %s\n\n  hjkl/↑↓←→ move   %s   q quit", v.session.Status(), controls))
}

// Run shows the session until the players quit.
func Run(session *Session, cfg *config.UIConfig) error {
	app := tview.NewApplication()
	status := tview.NewTextView()

	view := NewBoardView(session, cfg, status, app.Stop)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(view, session.Game().Rows()+boardTop+1, 0, true).
		AddItem(status, 3, 0, false)

	return app.SetRoot(layout, true).EnableMouse(true).Run()
}
