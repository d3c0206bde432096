package searcher

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// MonteCarloCFR runs the same regret-update machinery as CFR but
// samples chance outcomes and opponent actions instead of enumerating
// them. Each iteration is linear in the bid depth rather than
// exponential, at the cost of higher variance per iteration. Only the
// querying player's own decision nodes perform full regret matching
// over every legal move; opponent nodes are sampled through.
type MonteCarloCFR struct {
	duration   time.Duration
	iterations int
	clock      quartz.Clock
	rng        *rand.Rand
	table      map[string]*node
}

type MonteCarloCFROption func(*MonteCarloCFR)

func WithMonteCarloCFRBudget(duration time.Duration) MonteCarloCFROption {
	return func(c *MonteCarloCFR) {
		if duration > 0 {
			c.duration = duration
		}
	}
}

func WithMonteCarloCFRIterations(iterations int) MonteCarloCFROption {
	return func(c *MonteCarloCFR) {
		if iterations > 0 {
			c.iterations = iterations
		}
	}
}

func WithMonteCarloCFRClock(clock quartz.Clock) MonteCarloCFROption {
	return func(c *MonteCarloCFR) {
		c.clock = clock
	}
}

func WithMonteCarloCFRSeed(seed uint64) MonteCarloCFROption {
	return func(c *MonteCarloCFR) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

func NewMonteCarloCFR(options ...MonteCarloCFROption) *MonteCarloCFR {
	c := &MonteCarloCFR{
		clock: quartz.NewReal(),
		rng:   rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	for _, option := range options {
		option(c)
	}
	if c.duration <= 0 && c.iterations <= 0 {
		panic("Must specify search iterations or duration")
	}
	return c
}

// FindMove runs sampled iterations until the budget elapses, then
// samples a move from the average strategy for the root decision node.
func (c *MonteCarloCFR) FindMove(info game.InformationSet) (game.Move, error) {
	if info.IsTerminal() {
		return game.Move{}, fmt.Errorf("monte carlo cfr: root position is terminal")
	}
	if info.IsChance() {
		return game.Move{}, fmt.Errorf("monte carlo cfr: root position has no roll")
	}

	c.table = make(map[string]*node)
	start := c.clock.Now()
	iterations := 0
	for c.withinBudget(start, iterations) {
		pair := infoPair{info, opponentView(info)}
		c.traverse(pair, [3]float64{1, 1, 1})
		iterations++
	}
	log.Debug().Int("iterations", iterations).Str("position", info.Key()).Msg("monte carlo cfr search complete")

	root, ok := c.table[nodeKey(info)]
	if !ok {
		return game.Move{}, fmt.Errorf("monte carlo cfr: no statistics collected for the root position within budget")
	}
	return sampleMove(c.rng, root.moves, root.averageStrategy()), nil
}

func (c *MonteCarloCFR) withinBudget(start time.Time, iterations int) bool {
	if c.iterations > 0 {
		return iterations < c.iterations
	}
	return c.clock.Since(start) < c.duration
}

func (c *MonteCarloCFR) traverse(pair infoPair, reach [3]float64) float64 {
	if pair[0].IsTerminal() {
		mover := pair.moverIndex()
		return float64(game.Score(*pair[mover].OwnRoll, *pair[1-mover].OwnRoll,
			pair[mover].BidHistory, pair[mover].OwnerTurn))
	}

	// Chance node: sample a single roll weighted by its probability
	// instead of enumerating the full distribution.
	for i := range pair {
		if pair[i].IsChance() {
			outcome := game.SampleOutcome(c.rng, game.OutcomeDistribution(pair[i].OwnDice))
			next := pair
			next[i] = pair[i].WithRoll(outcome.Roll)
			return outcome.Prob * c.traverse(next,
				[3]float64{reach[0], reach[1], reach[2] * outcome.Prob})
		}
	}

	mover := pair.moverIndex()
	moves := pair[mover].PossibleMoves()
	key := nodeKey(pair[mover])
	entry, ok := c.table[key]
	if !ok {
		entry = newNode(moves)
		c.table[key] = entry
	}
	strategy := entry.currentStrategy(reach[mover])

	// Opponent node: sample one action from the current strategy and
	// recurse into that single branch.
	if mover == 1 {
		move := sampleMove(c.rng, moves, strategy)
		next := infoPair{pair[0].Successor(move), pair[1].Successor(move)}
		nextReach := reach
		nextReach[1] *= strategy[move]
		return -c.traverse(next, nextReach)
	}

	payoff := 0.0
	values := make(map[game.Move]float64, len(moves))
	for _, move := range moves {
		next := infoPair{pair[0].Successor(move), pair[1].Successor(move)}
		nextReach := reach
		nextReach[0] *= strategy[move]
		value := -c.traverse(next, nextReach)
		values[move] = value
		payoff += strategy[move] * value
	}

	for _, move := range moves {
		entry.regret[move] += reach[1] * reach[2] * (values[move] - payoff)
	}
	return payoff
}
