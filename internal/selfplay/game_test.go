package selfplay

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/othello"
	"github.com/stretchr/testify/require"
)

type failingScorer struct{}

func (failingScorer) Score([]float32, int, int) ([]float32, error) {
	return nil, errors.New("no model")
}

func (failingScorer) Close() error {
	return nil
}

func replay(t *testing.T, record models.GameRecord) *othello.Game {
	game, err := othello.New(record.Rows, record.Cols, othello.Black, othello.HighestWins)
	require.NoError(t, err)

	for _, sample := range record.Samples {
		require.Equal(t, game.Turn().String(), sample.Player)
		require.Equal(t, Encode(game.Board(), game.Turn()), sample.State)

		if sample.Move != models.PassMove {
			sq := SquareAt(sample.Move, record.Cols)
			require.NoError(t, game.ApplyMove(sq.Row, sq.Col))
		} else {
			require.False(t, game.HasLegalMove(game.Turn()))
		}
		game.ChangePlayer()
	}

	return game
}

func TestPlayGame(t *testing.T) {
	cfg := GameConfig{
		Rows:        6,
		Cols:        6,
		Style:       othello.HighestWins,
		Generation:  3,
		Epsilon:     Epsilon(3),
		RewardScale: DefaultRewardScale,
	}

	for seed := range uint64(10) {
		record, err := PlayGame(context.Background(), cfg, NewRandomScorer(seed), rand.New(rand.NewPCG(seed, 1)))
		require.NoError(t, err)
		require.NoError(t, record.Validate())

		require.Equal(t, 3, record.Generation)
		require.Len(t, record.Samples, record.Turns)
		require.NotEmpty(t, record.Samples)

		game := replay(t, record)
		require.Equal(t, record.BlackCount, game.BlackCount())
		require.Equal(t, record.WhiteCount, game.WhiteCount())

		outcome, done := game.FindWinner()
		require.True(t, done)
		require.Equal(t, outcome.String(), record.Outcome)

		for i, sample := range record.Samples {
			require.Equal(t, i, sample.Turn)
			if sample.Move != models.PassMove {
				require.Greater(t, sample.Target[sample.Move], float32(0))
			}
		}
	}
}

func TestPlayGame_DefaultRewardScale(t *testing.T) {
	cfg := DefaultGameConfig(0)
	cfg.RewardScale = 0

	record, err := PlayGame(context.Background(), cfg, NewRandomScorer(1), rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	// The first move of the standard opening flips exactly one disc.
	first := record.Samples[0]
	require.InDelta(t, 2.0/DefaultRewardScale, first.Target[first.Move], 1e-6)
}

func TestPlayGame_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PlayGame(ctx, DefaultGameConfig(0), NewRandomScorer(1), rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, context.Canceled)

	_, err = PlayGame(context.Background(), DefaultGameConfig(0), failingScorer{}, rand.New(rand.NewPCG(1, 1)))
	require.ErrorContains(t, err, "no model")

	cfg := DefaultGameConfig(0)
	cfg.Rows = 5
	_, err = PlayGame(context.Background(), cfg, NewRandomScorer(1), rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, othello.ErrInvalidBoardSize)
}

func TestRandomScorer(t *testing.T) {
	scorer := NewRandomScorer(5)

	scores, err := scorer.Score(make([]float32, 16), 4, 4)
	require.NoError(t, err)
	require.Len(t, scores, 16)
	for _, score := range scores {
		require.GreaterOrEqual(t, score, float32(0))
		require.Less(t, score, float32(1))
	}

	_, err = scorer.Score(make([]float32, 15), 4, 4)
	require.Error(t, err)
	require.NoError(t, scorer.Close())
}
