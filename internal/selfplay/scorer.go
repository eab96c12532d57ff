// Package selfplay plays games between two copies of a scoring model and turns them into
// training samples.
package selfplay

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Scorer scores every cell of a board for the player to move, higher is better.
// The state is encoded by Encode. Implementations must be safe for concurrent use.
type Scorer interface {
	Score(state []float32, rows, cols int) ([]float32, error)
	Close() error
}

// RandomScorer scores cells uniformly at random, useful to bootstrap the first generation.
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomScorer(seed uint64) *RandomScorer {
	return &RandomScorer{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *RandomScorer) Score(state []float32, rows, cols int) ([]float32, error) {
	if len(state) != rows*cols {
		return nil, fmt.Errorf("state has %d values for a %dx%d board", len(state), rows, cols)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scores := make([]float32, len(state))
	for i := range scores {
		scores[i] = s.rng.Float32()
	}
	return scores, nil
}

func (s *RandomScorer) Close() error {
	return nil
}
