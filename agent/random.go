package agent

import (
	"fmt"

	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// Random plays a uniformly random legal move. It is the weakest
// baseline opponent for matchups.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (a *Random) FindMove(info game.InformationSet) (game.Move, error) {
	moves := info.PossibleMoves()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("random agent: no legal moves from a terminal position")
	}
	return moves[a.rng.Intn(len(moves))], nil
}
