package agent

import (
	"fmt"

	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// RuleBased hyperparameters. Alpha is the credibility floor below
// which the previous bid is challenged outright, beta caps how far a
// "reasonable" raise increments the quantity, and epsilon is the bluff
// probability.
const (
	ruleAlpha   = 0.01
	ruleBeta    = 2
	ruleEpsilon = 0.01
)

// RuleBased is a pure closed-form heuristic with no search: it screens
// the previous bid against its binomial probability of being true,
// tiers the legal raises into "true" (own roll supports them) and
// "reasonable" (small quantity increments), and picks among them with
// a small bluffing chance.
type RuleBased struct {
	rng *rand.Rand
}

func NewRuleBased(seed uint64) *RuleBased {
	return &RuleBased{rng: rand.New(rand.NewSource(seed))}
}

func (a *RuleBased) FindMove(info game.InformationSet) (game.Move, error) {
	moves := info.PossibleMoves()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("rule-based agent: no legal moves from a terminal position")
	}
	if info.IsChance() {
		return game.Move{}, fmt.Errorf("rule-based agent: position has no roll")
	}

	reasonables := reasonableMoves(info, ruleBeta)
	trues := trueMoves(info)

	if prev, ok := info.LastBid(); ok {
		probGood := probBidGood(info, prev)
		if probGood <= ruleAlpha {
			// The previous bid is trivially or near-certainly false.
			return game.ChallengeMove(), nil
		}
		if probGood == 1 {
			// The previous bid is trivially true, so challenging is off
			// the table.
			reasonables = withoutChallenge(reasonables)
			trues = withoutChallenge(trues)
		}
	}

	if len(reasonables) > 0 {
		moves = reasonables
	}
	if len(moves) == 1 {
		return moves[0], nil
	}
	largestReasonable, _ := largestBid(moves)

	if a.rng.Float64() < ruleEpsilon {
		return largestReasonable, nil
	}
	if largestTrue, ok := largestBid(trues); ok {
		return largestTrue, nil
	}

	// Nothing is guaranteed true: raise minimally on the face this
	// roll shows most of, or fall back to the largest reasonable raise
	// when that bid is not legal from here.
	if oneUp, ok := oneUpBid(info); ok && isLegal(info, oneUp) {
		return oneUp, nil
	}
	return largestReasonable, nil
}

// probBidGood is the probability the bid holds given the observable
// dice: own face count plus wilds, and each unseen opponent die
// matching with probability 1/3 (the bid face or a wild).
func probBidGood(info game.InformationSet, bid game.Bid) float64 {
	roll := *info.OwnRoll
	needed := bid.Quantity - roll.Count(bid.Face) - roll[0]
	opponent := info.OpponentDice
	if needed <= 0 {
		return 1
	}
	if needed > opponent {
		return 0
	}
	prob := 0.0
	for i := needed; i <= opponent; i++ {
		prob += comb(opponent, i) * pow(1.0/3, i) * pow(2.0/3, opponent-i)
	}
	return prob
}

// trueMoves keeps the bids the own roll alone can vouch for.
func trueMoves(info game.InformationSet) []game.Move {
	roll := *info.OwnRoll
	var trues []game.Move
	for _, move := range info.PossibleMoves() {
		if !move.Challenge && roll.Supports(move.Bid) {
			trues = append(trues, move)
		}
	}
	return trues
}

// reasonableMoves keeps the challenge plus bids raising the quantity
// by at most beta over the previous bid.
func reasonableMoves(info game.InformationSet, beta int) []game.Move {
	prevQuantity := 0
	if prev, ok := info.LastBid(); ok {
		prevQuantity = prev.Quantity
	}
	var reasonables []game.Move
	for _, move := range info.PossibleMoves() {
		if move.Challenge || move.Bid.Quantity <= prevQuantity+beta {
			reasonables = append(reasonables, move)
		}
	}
	return reasonables
}

// largestBid picks the highest bid (quantity first, face tiebreak)
// among the moves, skipping any challenge.
func largestBid(moves []game.Move) (game.Move, bool) {
	var largest game.Bid
	found := false
	for _, move := range moves {
		if move.Challenge {
			continue
		}
		if !found || move.Bid.Beats(largest) {
			largest = move.Bid
			found = true
		}
	}
	return game.Move{Bid: largest}, found
}

// oneUpBid raises minimally on the face the roll shows most of,
// ignoring wilds, crediting the opponent with half the previous
// quantity when the faces line up.
func oneUpBid(info game.InformationSet) (game.Move, bool) {
	roll := *info.OwnRoll
	prevQuantity, prevFace := 0, 0
	if prev, ok := info.LastBid(); ok {
		prevQuantity, prevFace = prev.Quantity, prev.Face
	}

	bestFace, bestCount := 0, 0
	for face := game.MinBidFace; face <= game.NumFaces; face++ {
		expected := roll.Count(face)
		if face == prevFace {
			expected += prevQuantity / 2
		}
		if expected > bestCount {
			bestCount = expected
			bestFace = face
		}
	}
	if bestFace == 0 {
		// Nothing but wilds in hand.
		return game.Move{}, false
	}

	if bestFace > prevFace && prevQuantity > 0 {
		return game.BidMove(prevQuantity, bestFace), true
	}
	return game.BidMove(prevQuantity+1, bestFace), true
}

func withoutChallenge(moves []game.Move) []game.Move {
	kept := moves[:0]
	for _, move := range moves {
		if !move.Challenge {
			kept = append(kept, move)
		}
	}
	return kept
}

func isLegal(info game.InformationSet, move game.Move) bool {
	for _, legal := range info.PossibleMoves() {
		if legal == move {
			return true
		}
	}
	return false
}

func comb(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	c := 1.0
	for i := 1; i <= k; i++ {
		c *= float64(n-k+i) / float64(i)
	}
	return c
}

func pow(base float64, exp int) float64 {
	p := 1.0
	for i := 0; i < exp; i++ {
		p *= base
	}
	return p
}
