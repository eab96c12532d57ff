package selfplay

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/othello"
)

// GameConfig describes the games a worker plays.
type GameConfig struct {
	Rows        int
	Cols        int
	Style       othello.WinStyle
	Generation  int
	Epsilon     float64
	RewardScale float64
}

// DefaultGameConfig returns the standard 8x8 configuration for a generation.
func DefaultGameConfig(generation int) GameConfig {
	return GameConfig{
		Rows:        othello.DefaultSize,
		Cols:        othello.DefaultSize,
		Style:       othello.HighestWins,
		Generation:  generation,
		Epsilon:     Epsilon(generation),
		RewardScale: DefaultRewardScale,
	}
}

// PlayGame plays one game where both colors are driven by scorer and returns the finished
// record with one sample per ply. Passes are recorded with an all-zero target.
func PlayGame(ctx context.Context, cfg GameConfig, scorer Scorer, rng *rand.Rand) (models.GameRecord, error) {
	game, err := othello.New(cfg.Rows, cfg.Cols, othello.Black, cfg.Style)
	if err != nil {
		return models.GameRecord{}, err
	}

	rewardScale := cfg.RewardScale
	if rewardScale <= 0 {
		rewardScale = DefaultRewardScale
	}

	record := models.GameRecord{
		GameID:     uuid.NewString(),
		Generation: cfg.Generation,
		Rows:       cfg.Rows,
		Cols:       cfg.Cols,
	}

	for turn := 0; ; turn++ {
		if err := ctx.Err(); err != nil {
			return models.GameRecord{}, err
		}

		outcome, done := game.FindWinner()
		if done {
			record.Turns = turn
			record.Outcome = outcome.String()
			break
		}

		player := game.Turn()
		state := Encode(game.Board(), player)

		sample := models.Sample{
			GameID:     record.GameID,
			Generation: cfg.Generation,
			Turn:       turn,
			Rows:       cfg.Rows,
			Cols:       cfg.Cols,
			Player:     player.String(),
			State:      state,
			Move:       models.PassMove,
		}

		if !game.HasLegalMove(player) {
			sample.Target = make([]float32, len(state))
			record.Samples = append(record.Samples, sample)
			game.ChangePlayer()
			continue
		}

		scores, err := scorer.Score(state, cfg.Rows, cfg.Cols)
		if err != nil {
			return models.GameRecord{}, fmt.Errorf("failed to score turn %d: %w", turn, err)
		}
		if len(scores) != len(state) {
			return models.GameRecord{}, fmt.Errorf("scorer returned %d scores for %d cells", len(scores), len(state))
		}

		decision := ChooseMove(game, scores, cfg.Epsilon, rewardScale, rng)
		sample.Target = decision.Target

		if !decision.Passed {
			if err := game.ApplyMove(decision.Move.Row, decision.Move.Col); err != nil {
				return models.GameRecord{}, err
			}
			sample.Move = Index(decision.Move, cfg.Cols)
		}

		record.Samples = append(record.Samples, sample)
		game.ChangePlayer()
	}

	record.BlackCount = game.BlackCount()
	record.WhiteCount = game.WhiteCount()

	return record, nil
}
