package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBidBeats(t *testing.T) {
	t.Run("higher quantity outranks any face", func(t *testing.T) {
		require.True(t, Bid{Quantity: 3, Face: 2}.Beats(Bid{Quantity: 2, Face: 6}), "Quantity should dominate face")
	})

	t.Run("same quantity needs a higher face", func(t *testing.T) {
		require.True(t, Bid{Quantity: 2, Face: 5}.Beats(Bid{Quantity: 2, Face: 4}), "Higher face should outrank at equal quantity")
		require.False(t, Bid{Quantity: 2, Face: 4}.Beats(Bid{Quantity: 2, Face: 5}), "Lower face should not outrank")
	})

	t.Run("equal bids do not beat each other", func(t *testing.T) {
		require.False(t, Bid{Quantity: 2, Face: 4}.Beats(Bid{Quantity: 2, Face: 4}), "A bid should not beat itself")
	})
}

func TestMoveString(t *testing.T) {
	require.Equal(t, "3x5", BidMove(3, 5).String(), "Bid moves should print as quantity x face")
	require.Equal(t, "challenge", ChallengeMove().String(), "Challenge moves should print as challenge")
}
