// Package tui is a terminal front end for two players sharing one keyboard.
package tui

import (
	"errors"
	"fmt"

	"github.com/lk16/reversi/internal/othello"
)

// Phase is the stage of a session.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlay
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlay:
		return "play"
	default:
		return "finished"
	}
}

// Session holds one game from placing the starting pieces until a result.
type Session struct {
	game  *othello.Game
	phase Phase

	// setupColor is placed by Place during setup
	setupColor othello.Cell

	// start is the position play began from, used by Restart
	start *othello.Game

	history  []*othello.Game
	lastMove *othello.Square
	passed   bool
	outcome  othello.Outcome
}

// NewSession starts in the play phase from game, or in the setup phase when setup is set.
func NewSession(game *othello.Game, setup bool) *Session {
	s := &Session{
		game:       game,
		setupColor: othello.Black,
	}

	if setup {
		s.phase = PhaseSetup
	} else {
		s.StartPlay()
	}
	return s
}

func (s *Session) Game() *othello.Game {
	return s.game
}

func (s *Session) Phase() Phase {
	return s.phase
}

func (s *Session) SetupColor() othello.Cell {
	return s.setupColor
}

// LastMove returns the square of the previous move, nil before the first move.
func (s *Session) LastMove() *othello.Square {
	return s.lastMove
}

// Outcome returns the result, valid in PhaseFinished.
func (s *Session) Outcome() othello.Outcome {
	return s.outcome
}

// ToggleSetupColor switches the color placed during setup.
func (s *Session) ToggleSetupColor() {
	s.setupColor = s.setupColor.Opponent()
}

// Place toggles a setup piece on the 0-based square: an empty cell or a cell of the other
// color gets the setup color, a cell of the setup color becomes empty.
func (s *Session) Place(row, col int) error {
	if s.phase != PhaseSetup {
		return nil
	}

	cell := s.setupColor
	if s.game.Board().At(row, col) == s.setupColor {
		cell = othello.Empty
	}

	return s.game.Board().Set(row, col, cell)
}

// ClearBoard removes every piece during setup.
func (s *Session) ClearBoard() {
	if s.phase == PhaseSetup {
		s.game.Board().Clear()
	}
}

// StartPlay ends the setup phase. A position where the player to move is blocked passes
// right away, a position where nobody can move is finished.
func (s *Session) StartPlay() {
	s.phase = PhasePlay
	s.start = s.game.Copy()
	s.history = nil
	s.lastMove = nil
	s.passed = s.game.PassIfBlocked()
	s.checkFinished()
}

func (s *Session) checkFinished() {
	if outcome, done := s.game.FindWinner(); done {
		s.phase = PhaseFinished
		s.outcome = outcome
		return
	}
	s.phase = PhasePlay
	s.outcome = 0
}

// Play makes a move on the 0-based square. It returns false when the square is not a
// legal move or the session is not in the play phase.
func (s *Session) Play(row, col int) (bool, error) {
	if s.phase != PhasePlay {
		return false, nil
	}

	before := s.game.Copy()

	err := s.game.TakeTurn(row+1, col+1)
	if errors.Is(err, othello.ErrInvalidMove) {
		return false, nil
	}
	if errors.Is(err, othello.ErrGameFinished) {
		s.checkFinished()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.history = append(s.history, before)
	s.lastMove = &othello.Square{Row: row, Col: col}
	s.passed = s.game.PassIfBlocked()
	s.checkFinished()
	return true, nil
}

// Undo takes back the last move. It returns false when there is nothing to undo.
func (s *Session) Undo() bool {
	if s.phase == PhaseSetup || len(s.history) == 0 {
		return false
	}

	last := len(s.history) - 1
	s.game = s.history[last]
	s.history = s.history[:last]
	s.lastMove = nil
	s.passed = false
	s.checkFinished()
	return true
}

// Restart returns to the setup phase with the position play started from.
func (s *Session) Restart() {
	if s.start != nil {
		s.game = s.start.Copy()
	}
	s.phase = PhaseSetup
	s.history = nil
	s.lastMove = nil
	s.passed = false
	s.outcome = 0
}

// Status describes the counts and whose turn it is or who won.
func (s *Session) Status() string {
	counts := fmt.Sprintf("Black %d - White %d", s.game.BlackCount(), s.game.WhiteCount())

	switch s.phase {
	case PhaseSetup:
		return fmt.Sprintf("%s | Setup, placing %s", counts, s.setupColor)
	case PhaseFinished:
		if s.outcome == othello.Draw {
			return fmt.Sprintf("%s | Draw", counts)
		}
		return fmt.Sprintf("%s | %s wins", counts, s.outcome)
	}

	if s.passed {
		return fmt.Sprintf("%s | %s passed, %s to move", counts, s.game.Turn().Opponent(), s.game.Turn())
	}
	return fmt.Sprintf("%s | %s to move", counts, s.game.Turn())
}
