package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"liarsdice/game"
)

func decisionRoot(roll game.Roll, history []game.Move, ownDice, opponentDice int) game.InformationSet {
	return game.InformationSet{
		OwnDice:      ownDice,
		OpponentDice: opponentDice,
		OwnRoll:      &roll,
		BidHistory:   history,
		OwnerTurn:    true,
	}
}

func TestNewCFR(t *testing.T) {
	require.Panics(t, func() { NewCFR() }, "Constructing without a budget should panic")
}

func TestCFRFindMove(t *testing.T) {
	t.Run("rejects a terminal root", func(t *testing.T) {
		engine := NewCFR(WithCFRIterations(1))
		root := decisionRoot(game.Roll{0, 0, 0, 0, 1, 0},
			[]game.Move{game.BidMove(1, 5), game.ChallengeMove()}, 1, 1)

		_, err := engine.FindMove(root)
		require.Error(t, err, "A settled position has no move to find")
	})

	t.Run("rejects a chance root", func(t *testing.T) {
		engine := NewCFR(WithCFRIterations(1))
		root := game.InformationSet{OwnDice: 1, OpponentDice: 1, OwnerTurn: true}

		_, err := engine.FindMove(root)
		require.Error(t, err, "An undetermined roll has no decision to make")
	})

	// Exact CFR enumerates every increasing bid sequence, so the open
	// position is exercised with a single iteration and the multi-
	// iteration checks run from deep bid prefixes with a short tail.

	t.Run("opening strategy covers only legal openings", func(t *testing.T) {
		engine := NewCFR(WithCFRIterations(1), WithCFRSeed(1))
		root := decisionRoot(game.Roll{0, 0, 0, 0, 1, 0}, nil, 1, 1)

		move, err := engine.FindMove(root)
		require.NoError(t, err, "Search should succeed within the iteration budget")
		legal := root.PossibleMoves()
		require.Contains(t, legal, move, "The chosen move should be legal")

		total := 0.0
		for m, p := range engine.table[nodeKey(root)].averageStrategy() {
			require.GreaterOrEqual(t, p, 0.0, "Probabilities should be non-negative")
			if p > 0 {
				require.Contains(t, legal, m, "Support should stay within the legal openings")
				require.False(t, m.Challenge, "There is nothing to challenge at the opening")
			}
			total += p
		}
		require.InDelta(t, 1.0, total, 1e-9, "The opening strategy should normalize to 1")
	})

	t.Run("responds legally to a standing bid", func(t *testing.T) {
		engine := NewCFR(WithCFRIterations(20), WithCFRSeed(1))
		root := decisionRoot(game.Roll{0, 0, 0, 0, 1, 0}, []game.Move{game.BidMove(2, 5)}, 1, 1)

		move, err := engine.FindMove(root)
		require.NoError(t, err, "Search should succeed within the iteration budget")
		require.Contains(t, root.PossibleMoves(), move, "The chosen move should be legal")
	})

	t.Run("seeded searches are reproducible", func(t *testing.T) {
		root := decisionRoot(game.Roll{0, 0, 1, 0, 0, 0}, []game.Move{game.BidMove(3, 4)}, 1, 1)

		first, err := NewCFR(WithCFRIterations(20), WithCFRSeed(7)).FindMove(root)
		require.NoError(t, err)
		second, err := NewCFR(WithCFRIterations(20), WithCFRSeed(7)).FindMove(root)
		require.NoError(t, err)
		require.Equal(t, first, second, "The same seed and budget should pick the same move")
	})

	t.Run("collects statistics within a wall-clock budget", func(t *testing.T) {
		engine := NewCFR(WithCFRBudget(50*time.Millisecond), WithCFRSeed(1))
		root := decisionRoot(game.Roll{0, 0, 0, 0, 1, 0}, []game.Move{game.BidMove(3, 4)}, 1, 1)

		move, err := engine.FindMove(root)
		require.NoError(t, err, "At least one iteration should finish before the budget check")
		require.Contains(t, root.PossibleMoves(), move, "The chosen move should be legal")
	})

	t.Run("surfaces an expired budget with no data", func(t *testing.T) {
		mock := quartz.NewMock(t)
		trap := mock.Trap().Since()
		defer trap.Close()

		engine := NewCFR(WithCFRBudget(time.Millisecond), WithCFRClock(mock))
		root := decisionRoot(game.Roll{0, 0, 0, 0, 1, 0}, nil, 1, 1)

		errs := make(chan error, 1)
		go func() {
			_, err := engine.FindMove(root)
			errs <- err
		}()

		// Expire the budget before the first iteration can run.
		ctx := context.Background()
		call := trap.MustWait(ctx)
		mock.Advance(time.Minute)
		call.MustRelease(ctx)
		require.Error(t, <-errs, "An empty table for the root must not default to a move")
	})
}

func TestNodeKey(t *testing.T) {
	roll := game.Roll{0, 0, 0, 0, 1, 0}

	t.Run("aggregates across bid prefixes", func(t *testing.T) {
		short := decisionRoot(roll, []game.Move{game.BidMove(2, 4)}, 1, 1)
		long := decisionRoot(roll, []game.Move{game.BidMove(1, 3), game.BidMove(2, 4)}, 1, 1)
		require.Equal(t, nodeKey(short), nodeKey(long), "Positions sharing roll and last bid should share statistics")
	})

	t.Run("separates rolls and bids", func(t *testing.T) {
		a := decisionRoot(roll, []game.Move{game.BidMove(2, 4)}, 1, 1)
		b := decisionRoot(roll, []game.Move{game.BidMove(2, 5)}, 1, 1)
		c := decisionRoot(game.Roll{1, 0, 0, 0, 0, 0}, []game.Move{game.BidMove(2, 4)}, 1, 1)
		require.NotEqual(t, nodeKey(a), nodeKey(b), "Different last bids should not share statistics")
		require.NotEqual(t, nodeKey(a), nodeKey(c), "Different rolls should not share statistics")
	})
}

func TestOpponentView(t *testing.T) {
	root := decisionRoot(game.Roll{0, 0, 0, 0, 1, 0}, []game.Move{game.BidMove(1, 3)}, 1, 2)
	view := opponentView(root)

	require.Equal(t, 2, view.OwnDice, "Dice counts should mirror")
	require.Equal(t, 1, view.OpponentDice, "Dice counts should mirror")
	require.Nil(t, view.OwnRoll, "The opponent's roll stays hidden")
	require.False(t, view.OwnerTurn, "The turn should mirror")
	require.Equal(t, root.Key(), view.Key(), "The public history is shared")
}
