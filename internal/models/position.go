package models

import (
	"errors"
	"fmt"

	"github.com/lk16/reversi/internal/othello"
)

// PositionPayload describes a position as sent by API clients.
type PositionPayload struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Turn is the player to move, "B" or "W".
	Turn string `json:"turn"`

	// Style is the win style, ">" or "<". Empty means ">".
	Style string `json:"style,omitempty"`

	// Layout has one string per row using 'B', 'W' and '.' markers.
	// An empty layout means the standard opening.
	Layout []string `json:"layout,omitempty"`
}

// NewPositionPayload converts a game to its API representation.
func NewPositionPayload(game *othello.Game) PositionPayload {
	board := game.Board()

	layout := make([]string, board.Rows())
	for row := range board.Rows() {
		line := make([]byte, board.Cols())
		for col := range board.Cols() {
			line[col] = board.At(row, col).Symbol()
		}
		layout[row] = string(line)
	}

	return PositionPayload{
		Rows:   game.Rows(),
		Cols:   game.Cols(),
		Turn:   string(game.Turn().Symbol()),
		Style:  game.Style().String(),
		Layout: layout,
	}
}

// Game builds the engine state described by the payload.
func (p *PositionPayload) Game() (*othello.Game, error) {
	if p.Turn == "" {
		return nil, errors.New("turn is missing")
	}

	turn, err := othello.ParseCell(p.Turn)
	if err != nil {
		return nil, err
	}

	style := othello.HighestWins
	if p.Style != "" {
		if style, err = othello.ParseWinStyle(p.Style); err != nil {
			return nil, err
		}
	}

	if len(p.Layout) == 0 {
		return othello.New(p.Rows, p.Cols, turn, style)
	}

	return othello.NewWithLayout(p.Rows, p.Cols, turn, style, othello.ParseLayout(p.Layout))
}

// MovePayload asks the server to play a move in 1-based coordinates.
type MovePayload struct {
	Position PositionPayload `json:"position"`
	Row      int             `json:"row"`
	Col      int             `json:"col"`
}

// MoveAnalysis is a legal move together with the discs it flips.
type MoveAnalysis struct {
	Field    string           `json:"field"`
	Row      int              `json:"row"`
	Col      int              `json:"col"`
	Captures []othello.Square `json:"captures"`
}

// Analysis describes a position from the point of view of the player to move.
type Analysis struct {
	Position   PositionPayload `json:"position"`
	Turn       string          `json:"turn"`
	BlackCount int             `json:"black_count"`
	WhiteCount int             `json:"white_count"`
	BoardFull  bool            `json:"board_full"`

	// Winner is nil while the game is in progress, otherwise "Black", "White" or "Draw".
	Winner *string `json:"winner"`

	// Moves lists the legal moves for the player to move, 0-based.
	Moves []MoveAnalysis `json:"moves"`

	// Passed is set when the player to move changed because the other player was blocked.
	Passed bool `json:"passed,omitempty"`
}

// Analyze computes the analysis of a game without modifying it.
func Analyze(game *othello.Game) Analysis {
	analysis := Analysis{
		Position:   NewPositionPayload(game),
		Turn:       game.Turn().String(),
		BlackCount: game.BlackCount(),
		WhiteCount: game.WhiteCount(),
		BoardFull:  game.BoardIsFull(),
		Moves:      make([]MoveAnalysis, 0),
	}

	if outcome, done := game.FindWinner(); done {
		winner := outcome.String()
		analysis.Winner = &winner
	}

	for _, sq := range game.LegalMoves() {
		analysis.Moves = append(analysis.Moves, MoveAnalysis{
			Field:    sq.String(),
			Row:      sq.Row,
			Col:      sq.Col,
			Captures: game.PlacementIsValid(sq.Row, sq.Col),
		})
	}

	return analysis
}

// PlayMove applies the payload's move and returns the analysis of the resulting position.
// The returned error wraps the engine error, so callers can match it with errors.Is.
func PlayMove(payload MovePayload) (Analysis, error) {
	game, err := payload.Position.Game()
	if err != nil {
		return Analysis{}, fmt.Errorf("invalid position: %w", err)
	}

	if err = game.TakeTurn(payload.Row, payload.Col); err != nil {
		return Analysis{}, fmt.Errorf("failed to play move: %w", err)
	}

	passed := game.PassIfBlocked()
	analysis := Analyze(game)
	analysis.Passed = passed
	return analysis, nil
}
