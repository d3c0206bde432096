package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"liarsdice/agent"
)

func TestSimulateGame(t *testing.T) {
	t.Run("every game is decided", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		a := agent.NewRandom(1)
		b := agent.NewRandom(2)
		for i := 0; i < 20; i++ {
			score, err := SimulateGame(rng, a, b, 2, 2)
			require.NoError(t, err, "Random play should always settle")
			require.Contains(t, []int{-1, 1}, score, "The game is zero sum with unit stakes")
		}
	})

	t.Run("asymmetric dice counts play out", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		a := agent.NewConservative(0.2, 1)
		b := agent.NewRuleBased(2)
		score, err := SimulateGame(rng, a, b, 3, 1)
		require.NoError(t, err, "Heuristic agents should settle a lopsided game")
		require.Contains(t, []int{-1, 1}, score, "The game is zero sum with unit stakes")
	})
}

func TestRunMatchup(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := agent.NewRandom(1)
	b := agent.NewRandom(2)

	result, err := RunMatchup(rng, a, b, 2, 2, 30, true, "random v. random")
	require.NoError(t, err)
	require.Equal(t, "random v. random", result.Label)
	require.Equal(t, 30, result.Games, "Every scheduled game should be played")
	require.Equal(t, 30, result.Stats.Games, "Every score should be recorded")
	require.GreaterOrEqual(t, result.WinRate(), 0.0)
	require.LessOrEqual(t, result.WinRate(), 1.0)

	// With unit stakes the mean score determines the win rate exactly.
	require.InDelta(t, 2*result.WinRate()-1, result.Stats.Mean(), 1e-9,
		"Mean score and win rate should agree")
}
