package game

import "fmt"

// NumFaces is the number of faces per die. Face 1 is wild: it counts
// toward every face's total when a bid is settled.
const NumFaces = 6

// MinBidFace is the lowest biddable face. Ones cannot be bid directly
// because they are wild.
const MinBidFace = 2

// Bid is a claim that at least Quantity dice across both hands show
// Face, wilds included. Bids are totally ordered by (Quantity, Face)
// ascending.
type Bid struct {
	Quantity int
	Face     int
}

// Beats reports whether b outranks prev in the (quantity, face) order.
func (b Bid) Beats(prev Bid) bool {
	if b.Quantity != prev.Quantity {
		return b.Quantity > prev.Quantity
	}
	return b.Face > prev.Face
}

func (b Bid) String() string {
	return fmt.Sprintf("%dx%d", b.Quantity, b.Face)
}

// Move is either a bid or a challenge of the previous bid. The zero
// Bid is only meaningful when Challenge is set. Moves are comparable
// and can key maps.
type Move struct {
	Bid       Bid
	Challenge bool
}

// BidMove wraps a (quantity, face) pair as a move.
func BidMove(quantity, face int) Move {
	return Move{Bid: Bid{Quantity: quantity, Face: face}}
}

// ChallengeMove ends the bidding and settles the previous bid.
func ChallengeMove() Move {
	return Move{Challenge: true}
}

func (m Move) String() string {
	if m.Challenge {
		return "challenge"
	}
	return m.Bid.String()
}
