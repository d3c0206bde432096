package game

import (
	"math"

	"golang.org/x/exp/rand"
)

// Roll holds the count of each face among one player's dice, faces 1
// through 6 in order. Index 0 counts the wild ones.
type Roll [NumFaces]int

// Total returns the number of dice in the roll.
func (r Roll) Total() int {
	total := 0
	for _, c := range r {
		total += c
	}
	return total
}

// Count returns how many dice show the given face, not counting wilds.
func (r Roll) Count(face int) int {
	return r[face-1]
}

// Supports reports whether this roll alone satisfies the bid, counting
// wilds toward the bid face.
func (r Roll) Supports(b Bid) bool {
	return r[0]+r.Count(b.Face) >= b.Quantity
}

// Outcome pairs a face-count vector with its multinomial probability.
type Outcome struct {
	Roll Roll
	Prob float64
}

// OutcomeDistribution enumerates every face-count vector for n dice
// and assigns each the multinomial probability
// n!/(c1!*...*c6!) * (1/6)^n. The probabilities sum to 1.
func OutcomeDistribution(n int) []Outcome {
	rolls := AllRolls(n)
	base := math.Pow(1.0/NumFaces, float64(n))
	outcomes := make([]Outcome, len(rolls))
	for i, roll := range rolls {
		p := factorial(n)
		for _, c := range roll {
			p /= factorial(c)
		}
		outcomes[i] = Outcome{Roll: roll, Prob: p * base}
	}
	return outcomes
}

// AllRolls enumerates every face-count vector summing to n, in
// lexicographic order.
func AllRolls(n int) []Roll {
	var rolls []Roll
	var current Roll
	var fill func(face, remaining int)
	fill = func(face, remaining int) {
		if face == NumFaces-1 {
			current[face] = remaining
			rolls = append(rolls, current)
			return
		}
		for c := 0; c <= remaining; c++ {
			current[face] = c
			fill(face+1, remaining-c)
		}
	}
	fill(0, n)
	return rolls
}

// RandomRoll rolls n dice uniformly.
func RandomRoll(rng *rand.Rand, n int) Roll {
	var roll Roll
	for i := 0; i < n; i++ {
		roll[rng.Intn(NumFaces)]++
	}
	return roll
}

// SampleOutcome draws one roll from the distribution, weighted by
// probability.
func SampleOutcome(rng *rand.Rand, outcomes []Outcome) Outcome {
	target := rng.Float64()
	cumulative := 0.0
	for _, outcome := range outcomes {
		cumulative += outcome.Prob
		if target < cumulative {
			return outcome
		}
	}
	return outcomes[len(outcomes)-1]
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
