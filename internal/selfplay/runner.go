package selfplay

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk16/reversi/internal/models"
)

// RunnerConfig configures a pool of self-play workers.
type RunnerConfig struct {
	Workers int

	// Games is the total number of games to play, 0 plays until the context is canceled.
	Games int

	Seed uint64
	Game GameConfig
}

// GameResult is sent by a worker for every finished game or failure.
type GameResult struct {
	WorkerID int
	Record   models.GameRecord
	Duration time.Duration
	Err      error
}

// Runner plays games on a fixed number of goroutines sharing one scorer.
type Runner struct {
	cfg    RunnerConfig
	scorer Scorer

	claimed atomic.Int64
}

func NewRunner(cfg RunnerConfig, scorer Scorer) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Runner{cfg: cfg, scorer: scorer}
}

// claim reserves the next game, it returns false once the budget is used up.
func (r *Runner) claim() bool {
	n := r.claimed.Add(1)
	return r.cfg.Games <= 0 || n <= int64(r.cfg.Games)
}

// Run starts the workers and returns a channel with their results. The channel is closed
// after all workers stopped. A worker stops on its first error.
func (r *Runner) Run(ctx context.Context) <-chan GameResult {
	results := make(chan GameResult, r.cfg.Workers)

	var wg sync.WaitGroup
	for id := range r.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, id, results)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (r *Runner) work(ctx context.Context, id int, results chan<- GameResult) {
	rng := rand.New(rand.NewPCG(r.cfg.Seed, uint64(id)+1))

	for r.claim() {
		start := time.Now()
		record, err := PlayGame(ctx, r.cfg.Game, r.scorer, rng)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		result := GameResult{
			WorkerID: id,
			Record:   record,
			Duration: time.Since(start),
			Err:      err,
		}

		select {
		case results <- result:
		case <-ctx.Done():
			return
		}

		if err != nil {
			slog.Error("Self-play worker stopped", "worker", id, "error", err)
			return
		}
	}
}
