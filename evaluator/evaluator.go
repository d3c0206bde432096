package evaluator

import (
	"fmt"

	"golang.org/x/exp/rand"

	"liarsdice/agent"
	"liarsdice/game"
)

// SimulateGame plays one complete game between two agents, each seeing
// only its own mirrored information set, and returns the score from
// a's side: +1 when a wins the settled challenge, -1 when b does.
func SimulateGame(rng *rand.Rand, a, b agent.Agent, aDice, bDice int) (int, error) {
	rollA := game.RandomRoll(rng, aDice)
	rollB := game.RandomRoll(rng, bDice)
	positionA := game.NewPosition(rng, aDice, bDice, &rollA, nil, true)
	positionB := game.NewPosition(rng, bDice, aDice, &rollB, nil, false)

	moverA := true
	for !positionA.IsTerminal() {
		var move game.Move
		var err error
		if moverA {
			move, err = a.FindMove(positionA)
		} else {
			move, err = b.FindMove(positionB)
		}
		if err != nil {
			return 0, fmt.Errorf("simulate game: %w", err)
		}
		positionA = positionA.Successor(move)
		positionB = positionB.Successor(move)
		moverA = !moverA
	}

	history := positionA.BidHistory
	// a made the last bid iff the history length is even: the trailing
	// challenge then came from b.
	aMadeLastBid := len(history)%2 == 0
	return game.Score(rollA, rollB, history, aMadeLastBid), nil
}

// Result aggregates one matchup from agent a's side.
type Result struct {
	Label string
	Games int
	Wins  int
	Stats Statistics
}

// WinRate is a's share of decided games.
func (r Result) WinRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Games)
}

// RunMatchup plays the given number of games between a and b,
// alternating the first mover when asked, and accumulates win-rate
// statistics from a's side.
func RunMatchup(rng *rand.Rand, a, b agent.Agent, aDice, bDice, games int, alternate bool, label string) (Result, error) {
	result := Result{Label: label, Games: games}
	for i := 0; i < games; i++ {
		var score int
		var err error
		if alternate && i%2 == 1 {
			score, err = SimulateGame(rng, b, a, bDice, aDice)
			score = -score
		} else {
			score, err = SimulateGame(rng, a, b, aDice, bDice)
		}
		if err != nil {
			return Result{}, fmt.Errorf("matchup %q game %d: %w", label, i+1, err)
		}
		if score > 0 {
			result.Wins++
		}
		result.Stats.Add(float64(score))
	}
	return result, nil
}
