package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"liarsdice/game"
)

func position(roll game.Roll, history []game.Move, ownDice, opponentDice int) game.InformationSet {
	return game.InformationSet{
		OwnDice:      ownDice,
		OpponentDice: opponentDice,
		OwnRoll:      &roll,
		BidHistory:   history,
		OwnerTurn:    true,
	}
}

func TestRandomFindMove(t *testing.T) {
	t.Run("plays a legal move", func(t *testing.T) {
		a := NewRandom(42)
		info := position(game.Roll{0, 0, 0, 0, 1, 0}, []game.Move{game.BidMove(1, 3)}, 1, 1)
		for i := 0; i < 50; i++ {
			move, err := a.FindMove(info)
			require.NoError(t, err)
			require.Contains(t, info.PossibleMoves(), move, "Every move should be legal")
		}
	})

	t.Run("rejects a terminal position", func(t *testing.T) {
		a := NewRandom(42)
		info := position(game.Roll{0, 0, 0, 0, 1, 0},
			[]game.Move{game.BidMove(1, 3), game.ChallengeMove()}, 1, 1)
		_, err := a.FindMove(info)
		require.Error(t, err, "A settled position has no move to find")
	})
}

func TestConservativeFindMove(t *testing.T) {
	t.Run("raises among supported bids", func(t *testing.T) {
		a := NewConservative(1e-9, 42)
		// Two wilds and two threes: every quantity-3 raise on threes
		// is safe, nothing else is.
		info := position(game.Roll{2, 0, 2, 0, 0, 0}, []game.Move{game.BidMove(3, 2)}, 4, 4)
		roll := *info.OwnRoll
		for i := 0; i < 100; i++ {
			move, err := a.FindMove(info)
			require.NoError(t, err)
			require.False(t, move.Challenge, "A supported position should raise")
			require.True(t, roll.Supports(move.Bid), "Raises should be supported by the roll")
		}
	})

	t.Run("challenges when nothing is supported", func(t *testing.T) {
		a := NewConservative(1e-9, 42)
		info := position(game.Roll{0, 0, 0, 0, 1, 0}, []game.Move{game.BidMove(3, 2)}, 1, 1)
		for i := 0; i < 100; i++ {
			move, err := a.FindMove(info)
			require.NoError(t, err)
			require.True(t, move.Challenge, "An unsupported position should challenge")
		}
	})

	t.Run("opens on the one supported bid", func(t *testing.T) {
		a := NewConservative(1e-9, 42)
		// A single two supports exactly one opening bid.
		info := position(game.Roll{0, 1, 0, 0, 0, 0}, nil, 1, 1)
		for i := 0; i < 100; i++ {
			move, err := a.FindMove(info)
			require.NoError(t, err)
			require.Equal(t, game.BidMove(1, 2), move, "The only supported opening should be chosen")
		}
	})

	t.Run("rejects a terminal position", func(t *testing.T) {
		a := NewConservative(0.2, 42)
		info := position(game.Roll{0, 0, 0, 0, 1, 0},
			[]game.Move{game.BidMove(1, 3), game.ChallengeMove()}, 1, 1)
		_, err := a.FindMove(info)
		require.Error(t, err, "A settled position has no move to find")
	})
}
