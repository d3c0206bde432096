package game

import (
	"strings"

	"golang.org/x/exp/rand"
)

// InformationSet is a position as seen by one player: their own dice,
// the opponent's dice count, and the public bid history. A nil OwnRoll
// marks a chance node awaiting determinization. InformationSets are
// immutable - Successor and WithRoll return copies.
type InformationSet struct {
	OwnDice      int
	OpponentDice int
	OwnRoll      *Roll
	BidHistory   []Move
	OwnerTurn    bool
}

// NewPosition builds a root position for a search or a game. A nil
// roll is drawn uniformly at random from the rng; prefix may carry
// bids already made.
func NewPosition(rng *rand.Rand, ownDice, opponentDice int, roll *Roll, prefix []Move, ownerTurn bool) InformationSet {
	if roll == nil {
		drawn := RandomRoll(rng, ownDice)
		roll = &drawn
	}
	history := make([]Move, len(prefix))
	copy(history, prefix)
	return InformationSet{
		OwnDice:      ownDice,
		OpponentDice: opponentDice,
		OwnRoll:      roll,
		BidHistory:   history,
		OwnerTurn:    ownerTurn,
	}
}

// IsTerminal reports whether the bidding has been settled by a
// challenge.
func (s InformationSet) IsTerminal() bool {
	return len(s.BidHistory) > 0 && s.BidHistory[len(s.BidHistory)-1].Challenge
}

// IsChance reports whether the owner's roll is still undetermined.
func (s InformationSet) IsChance() bool {
	return s.OwnRoll == nil
}

// LastBid returns the most recent bid, if any. A trailing challenge is
// skipped over.
func (s InformationSet) LastBid() (Bid, bool) {
	for i := len(s.BidHistory) - 1; i >= 0; i-- {
		if !s.BidHistory[i].Challenge {
			return s.BidHistory[i].Bid, true
		}
	}
	return Bid{}, false
}

// PossibleMoves enumerates the legal moves: the opening minimum (1,2)
// on an empty history, same-quantity bids on a higher face, any higher
// quantity on faces 2..6 up to 2x the total dice in play, and a
// challenge once at least one bid exists. Terminal positions have no
// moves.
func (s InformationSet) PossibleMoves() []Move {
	if s.IsTerminal() {
		return nil
	}

	maxQuantity := 2 * (s.OwnDice + s.OpponentDice)
	last := Bid{Quantity: 1, Face: MinBidFace}
	var moves []Move
	if len(s.BidHistory) == 0 {
		moves = append(moves, Move{Bid: last})
	} else {
		last = s.BidHistory[len(s.BidHistory)-1].Bid
	}

	for face := last.Face + 1; face <= NumFaces; face++ {
		moves = append(moves, BidMove(last.Quantity, face))
	}
	for quantity := last.Quantity + 1; quantity <= maxQuantity; quantity++ {
		for face := MinBidFace; face <= NumFaces; face++ {
			moves = append(moves, BidMove(quantity, face))
		}
	}

	if len(s.BidHistory) > 0 {
		moves = append(moves, ChallengeMove())
	}
	return moves
}

// Successor returns a copy with the move appended and the turn
// flipped. Roll and dice counts carry over unchanged.
func (s InformationSet) Successor(move Move) InformationSet {
	history := make([]Move, len(s.BidHistory), len(s.BidHistory)+1)
	copy(history, s.BidHistory)
	return InformationSet{
		OwnDice:      s.OwnDice,
		OpponentDice: s.OpponentDice,
		OwnRoll:      s.OwnRoll,
		BidHistory:   append(history, move),
		OwnerTurn:    !s.OwnerTurn,
	}
}

// WithRoll returns a copy with the roll assigned, resolving a chance
// node. The receiver is never mutated so sibling branches of a chance
// expansion cannot alias the same roll.
func (s InformationSet) WithRoll(roll Roll) InformationSet {
	resolved := s
	resolved.OwnRoll = &roll
	return resolved
}

// Key is a canonical serialization of the bid history. Information
// sets reached through different determinizations of the opponent's
// hidden roll share a key, which is what lets search statistics
// aggregate across them.
func (s InformationSet) Key() string {
	parts := make([]string, len(s.BidHistory))
	for i, move := range s.BidHistory {
		parts[i] = move.String()
	}
	return strings.Join(parts, ",")
}

// Score settles a terminal position from the owner's side: +1 when the
// last bid held up for the side that made it, -1 otherwise. The count
// includes both players' wilds. Non-terminal histories score 0. The
// game is zero-sum; callers negate rather than re-deriving the sign.
func Score(ownRoll, opponentRoll Roll, history []Move, ownerMadeLastBid bool) int {
	if len(history) < 2 || !history[len(history)-1].Challenge {
		return 0
	}
	last := history[len(history)-2].Bid
	matches := ownRoll.Count(last.Face) + ownRoll[0] +
		opponentRoll.Count(last.Face) + opponentRoll[0]
	bidderWon := matches >= last.Quantity
	if bidderWon == ownerMadeLastBid {
		return 1
	}
	return -1
}
