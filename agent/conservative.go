package agent

import (
	"fmt"

	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// Conservative is the epsilon-conservative heuristic: with probability
// epsilon it bluffs with any legal move; otherwise it raises uniformly
// among bids its own roll supports, or challenges when it supports
// none. The same policy models the opponent inside the MCTS engine, so
// this agent doubles as that model's strongest admirer in matchups.
type Conservative struct {
	epsilon float64
	rng     *rand.Rand
}

func NewConservative(epsilon float64, seed uint64) *Conservative {
	return &Conservative{epsilon: epsilon, rng: rand.New(rand.NewSource(seed))}
}

func (a *Conservative) FindMove(info game.InformationSet) (game.Move, error) {
	moves := info.PossibleMoves()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("conservative agent: no legal moves from a terminal position")
	}
	if info.IsChance() {
		return game.Move{}, fmt.Errorf("conservative agent: position has no roll")
	}

	if a.rng.Float64() < a.epsilon {
		return moves[a.rng.Intn(len(moves))], nil
	}

	roll := *info.OwnRoll
	var viable []game.Move
	for _, move := range moves {
		if !move.Challenge && roll.Supports(move.Bid) {
			viable = append(viable, move)
		}
	}
	if len(viable) > 0 {
		return viable[a.rng.Intn(len(viable))], nil
	}
	if last := moves[len(moves)-1]; last.Challenge {
		return last, nil
	}
	// Opening move with an unsupportive roll: forced to bluff.
	return moves[a.rng.Intn(len(moves))], nil
}
