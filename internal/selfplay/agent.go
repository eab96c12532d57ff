package selfplay

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/lk16/reversi/internal/othello"
)

const (
	// DefaultRewardScale divides the discs gained by a move into a training target.
	DefaultRewardScale = 12.0

	// MinEpsilon is the exploration floor.
	MinEpsilon = 0.1
)

// Epsilon returns the exploration rate for a generation: 1/log2(generation/2+2), never
// below MinEpsilon. Generation 0 explores the whole board.
func Epsilon(generation int) float64 {
	if generation < 0 {
		generation = 0
	}
	return max(1/math.Log2(float64(generation)/2+2), MinEpsilon)
}

// Decision is the move picked for one position together with its training target.
type Decision struct {
	Move   othello.Square
	Passed bool

	// Target is the scores with illegal probed cells set to 0 and the played
	// cell set to the scaled number of discs gained.
	Target []float32
}

// rankCells returns cell indexes ordered by descending score, ties by index.
func rankCells(scores []float32) []int {
	ranked := make([]int, len(scores))
	for i := range ranked {
		ranked[i] = i
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	return ranked
}

// probeOrder returns the ranks to try from start: first towards better ranks, then the
// worse ranks below start.
func probeOrder(start, cells int) []int {
	order := make([]int, 0, cells)
	for rank := start; rank >= 0; rank-- {
		order = append(order, rank)
	}
	for rank := start + 1; rank < cells; rank++ {
		order = append(order, rank)
	}
	return order
}

// ChooseMove picks a move for the player to move. A random starting rank is drawn from
// the top epsilon share of the ranked cells, probing continues until a legal cell is found.
// The game is not modified.
func ChooseMove(game *othello.Game, scores []float32, epsilon, rewardScale float64, rng *rand.Rand) Decision {
	cells := game.Rows() * game.Cols()

	target := make([]float32, cells)
	copy(target, scores)

	if !game.HasLegalMove(game.Turn()) {
		clear(target)
		return Decision{Passed: true, Target: target}
	}

	window := max(1, min(cells, int(epsilon*float64(cells))))
	start := rng.IntN(window)

	ranked := rankCells(target)

	for _, rank := range probeOrder(start, cells) {
		index := ranked[rank]
		sq := SquareAt(index, game.Cols())

		captures := game.PlacementIsValid(sq.Row, sq.Col)
		if len(captures) == 0 {
			target[index] = 0
			continue
		}

		// The placed disc plus every flipped one.
		gain := len(captures) + 1

		target[index] = float32(float64(gain) / rewardScale)
		return Decision{Move: sq, Target: target}
	}

	// Unreachable while HasLegalMove and IsLegal agree.
	clear(target)
	return Decision{Passed: true, Target: target}
}
