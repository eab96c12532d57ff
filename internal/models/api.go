package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/othello"
)

// PassMove is the move index recorded when the player to move had no legal move.
const PassMove = -1

// Sample is one self-play training example: the board seen by the player to move and
// the per-cell target the scoring network is trained towards.
type Sample struct {
	GameID     string    `json:"game_id"    db:"game_id"`
	Generation int       `json:"generation" db:"generation"`
	Turn       int       `json:"turn"       db:"turn"`
	Rows       int       `json:"rows"       db:"board_rows"`
	Cols       int       `json:"cols"       db:"board_cols"`
	Player     string    `json:"player"     db:"player"`
	State      []float32 `json:"state"      db:"state"`
	Target     []float32 `json:"target"     db:"target"`
	Move       int       `json:"move"       db:"move"`
}

// Validate checks that the sample vectors match the board dimensions.
func (s *Sample) Validate() error {
	cells := s.Rows * s.Cols

	if len(s.State) != cells {
		return fmt.Errorf("state has %d values, expected %d", len(s.State), cells)
	}

	if len(s.Target) != cells {
		return fmt.Errorf("target has %d values, expected %d", len(s.Target), cells)
	}

	if s.Move < PassMove || s.Move >= cells {
		return fmt.Errorf("move %d is out of range", s.Move)
	}

	if _, err := othello.ParseCell(s.Player); err != nil {
		return fmt.Errorf("invalid sample player: %w", err)
	}

	return nil
}

// GameRecord is a finished self-play game with all of its samples.
type GameRecord struct {
	GameID     string   `json:"game_id"     db:"game_id"`
	Generation int      `json:"generation"  db:"generation"`
	Rows       int      `json:"rows"        db:"board_rows"`
	Cols       int      `json:"cols"        db:"board_cols"`
	Turns      int      `json:"turns"       db:"turns"`
	Outcome    string   `json:"outcome"     db:"outcome"`
	BlackCount int      `json:"black_count" db:"black_count"`
	WhiteCount int      `json:"white_count" db:"white_count"`
	Samples    []Sample `json:"samples"     db:"-"`
}

// Validate validates a game record and its samples.
func (g *GameRecord) Validate() error {
	if _, err := uuid.Parse(g.GameID); err != nil {
		return fmt.Errorf("invalid game id %q: %w", g.GameID, err)
	}

	if _, err := othello.New(g.Rows, g.Cols, othello.Black, othello.HighestWins); err != nil {
		return err
	}

	switch g.Outcome {
	case othello.BlackWins.String(), othello.WhiteWins.String(), othello.Draw.String():
	default:
		return fmt.Errorf("invalid outcome: %q", g.Outcome)
	}

	if g.BlackCount+g.WhiteCount > g.Rows*g.Cols {
		return errors.New("disc counts exceed board size")
	}

	for i := range g.Samples {
		sample := &g.Samples[i]
		if sample.GameID != g.GameID {
			return fmt.Errorf("sample %d belongs to game %q", i, sample.GameID)
		}
		if sample.Rows != g.Rows || sample.Cols != g.Cols {
			return fmt.Errorf("sample %d has dimensions %dx%d", i, sample.Rows, sample.Cols)
		}
		if err := sample.Validate(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}

	return nil
}

// GamesPayload represents a batch of finished self-play games to submit.
type GamesPayload struct {
	Games []GameRecord `json:"games"`
}

// SampleCount returns the total number of samples in the payload.
func (p *GamesPayload) SampleCount() int {
	count := 0
	for _, game := range p.Games {
		count += len(game.Samples)
	}
	return count
}

// Validate validates the games payload.
func (p *GamesPayload) Validate() error {
	if len(p.Games) == 0 {
		return errors.New("games is empty")
	}

	if len(p.Games) > config.MaxGamesPerUpload {
		return fmt.Errorf("too many games: %d, maximum is %d", len(p.Games), config.MaxGamesPerUpload)
	}

	if count := p.SampleCount(); count > config.MaxSamplesPerUpload {
		return fmt.Errorf("too many samples: %d, maximum is %d", count, config.MaxSamplesPerUpload)
	}

	for i := range p.Games {
		if err := p.Games[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// SelfPlayStats are the aggregated counters of all submitted self-play games.
type SelfPlayStats struct {
	Games     int64            `json:"games"`
	Samples   int64            `json:"samples"`
	Outcomes  map[string]int64 `json:"outcomes"`
	BoardSize map[string]int64 `json:"board_sizes"`
}

// BoardSizeKey is the stats key of a board size, for example "8x8".
func BoardSizeKey(rows, cols int) string {
	return fmt.Sprintf("%dx%d", rows, cols)
}

// RegisterRequest is sent by a self-play worker when it starts.
type RegisterRequest struct {
	Hostname  string `json:"hostname"`
	GitCommit string `json:"git_commit"`
}

type RegisterResponse struct {
	WorkerID string `json:"worker_id"`
}

// HeartbeatRequest reports the progress of a worker since its previous heartbeat.
type HeartbeatRequest struct {
	Games   int `json:"games"`
	Samples int `json:"samples"`
}

// WorkerStats is the server side view of a registered self-play worker.
type WorkerStats struct {
	ID          string    `json:"id"`
	Hostname    string    `json:"hostname"`
	GitCommit   string    `json:"git_commit"`
	GamesPlayed int       `json:"games_played"`
	Samples     int       `json:"samples"`
	LastActive  time.Time `json:"last_active"`
}

type WorkersResponse struct {
	ActiveWorkers int           `json:"active_workers"`
	Workers       []WorkerStats `json:"workers"`
}

type VersionResponse struct {
	Commit string `json:"commit"`
}
