package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatistics(t *testing.T) {
	t.Run("empty statistics are all zero", func(t *testing.T) {
		var s Statistics
		require.Zero(t, s.Mean())
		require.Zero(t, s.Variance())
		require.Zero(t, s.StdError())
	})

	t.Run("known scores", func(t *testing.T) {
		var s Statistics
		for _, score := range []float64{1, -1, 1, 1} {
			s.Add(score)
		}

		require.Equal(t, 4, s.Games)
		require.InDelta(t, 0.5, s.Mean(), 1e-9, "Mean of 1,-1,1,1 is 0.5")
		require.InDelta(t, 1.0, s.Variance(), 1e-9, "Sample variance of 1,-1,1,1 is 1")
		require.InDelta(t, 1.0, s.StdDev(), 1e-9)
		require.InDelta(t, 0.5, s.StdError(), 1e-9, "StdErr is stddev over sqrt(n)")

		low, high := s.ConfidenceInterval95()
		require.InDelta(t, 0.5-1.96*0.5, low, 1e-9, "CI should be mean minus 1.96 standard errors")
		require.InDelta(t, 0.5+1.96*0.5, high, 1e-9, "CI should be mean plus 1.96 standard errors")
	})
}
