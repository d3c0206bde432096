package searcher

import (
	"math"

	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// pruneThreshold is the smallest probability kept when extracting a
// final strategy; anything below is zeroed and the remaining mass
// renormalized.
const pruneThreshold = 0.001

// node accumulates regret and strategy mass for one decision key over
// the lifetime of a single search call. Created lazily on first visit,
// never shared across calls.
type node struct {
	moves       []game.Move
	regret      map[game.Move]float64
	strategy    map[game.Move]float64
	strategySum map[game.Move]float64
}

func newNode(moves []game.Move) *node {
	return &node{
		moves:       moves,
		regret:      make(map[game.Move]float64, len(moves)),
		strategy:    make(map[game.Move]float64, len(moves)),
		strategySum: make(map[game.Move]float64, len(moves)),
	}
}

// currentStrategy regret-matches the accumulated regrets into a
// probability distribution and folds the reach-weighted result into
// the running average. All-nonpositive regrets fall back to uniform.
func (n *node) currentStrategy(reach float64) map[game.Move]float64 {
	totalPositive := 0.0
	for _, move := range n.moves {
		n.strategy[move] = math.Max(0, n.regret[move])
		totalPositive += n.strategy[move]
	}
	if totalPositive > 0 {
		for _, move := range n.moves {
			n.strategy[move] /= totalPositive
			n.strategySum[move] += reach * n.strategy[move]
		}
	} else {
		uniform := 1 / float64(len(n.moves))
		for _, move := range n.moves {
			n.strategy[move] = uniform
			n.strategySum[move] += reach * uniform
		}
	}
	return n.strategy
}

// averageStrategy normalizes the cumulative reach-weighted strategy,
// prunes moves below pruneThreshold, and renormalizes the surviving
// mass. A never-weighted node degrades to uniform.
func (n *node) averageStrategy() map[game.Move]float64 {
	average := make(map[game.Move]float64, len(n.moves))
	total := 0.0
	for _, move := range n.moves {
		total += n.strategySum[move]
	}
	if total > 0 {
		for _, move := range n.moves {
			average[move] = n.strategySum[move] / total
		}
	} else {
		uniform := 1 / float64(len(n.moves))
		for _, move := range n.moves {
			average[move] = uniform
		}
	}

	kept := 0.0
	for _, move := range n.moves {
		if average[move] < pruneThreshold {
			average[move] = 0
		} else {
			kept += average[move]
		}
	}
	if kept > 0 {
		for _, move := range n.moves {
			average[move] /= kept
		}
	}
	return average
}

// sampleMove draws a move from the distribution. Moves are visited in
// the given order so sampling is reproducible for a seeded rng.
func sampleMove(rng *rand.Rand, moves []game.Move, dist map[game.Move]float64) game.Move {
	target := rng.Float64()
	cumulative := 0.0
	for _, move := range moves {
		cumulative += dist[move]
		if target < cumulative {
			return move
		}
	}
	return moves[len(moves)-1]
}
