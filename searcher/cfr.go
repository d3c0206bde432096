package searcher

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// infoPair carries one information set per player along a traversal.
// Index 0 is always the querying player's view.
type infoPair [2]game.InformationSet

// moverIndex identifies which side of the pair acts next.
func (p infoPair) moverIndex() int {
	if p[0].OwnerTurn {
		return 0
	}
	return 1
}

// nodeKey serializes a decision node's aggregation key: the mover's
// private roll plus the most recent bid. Positions that differ only in
// the earlier bid prefix share statistics.
func nodeKey(info game.InformationSet) string {
	suffix := ""
	if last, ok := info.LastBid(); ok {
		suffix = last.String()
	}
	return fmt.Sprintf("%v|%s", *info.OwnRoll, suffix)
}

// opponentView mirrors a root position as the opponent sees it, with
// the hidden roll left undetermined.
func opponentView(info game.InformationSet) game.InformationSet {
	return game.InformationSet{
		OwnDice:      info.OpponentDice,
		OpponentDice: info.OwnDice,
		OwnRoll:      nil,
		BidHistory:   info.BidHistory,
		OwnerTurn:    !info.OwnerTurn,
	}
}

// CFR approximates a Nash-equilibrium strategy by exact counterfactual
// regret minimization: every chance outcome and every move at every
// decision node is enumerated each iteration. Each FindMove call owns
// its own regret tables; nothing persists between calls.
type CFR struct {
	duration   time.Duration
	iterations int
	clock      quartz.Clock
	rng        *rand.Rand
	table      map[string]*node
}

type CFROption func(*CFR)

func WithCFRBudget(duration time.Duration) CFROption {
	return func(c *CFR) {
		if duration > 0 {
			c.duration = duration
		}
	}
}

func WithCFRIterations(iterations int) CFROption {
	return func(c *CFR) {
		if iterations > 0 {
			c.iterations = iterations
		}
	}
}

func WithCFRClock(clock quartz.Clock) CFROption {
	return func(c *CFR) {
		c.clock = clock
	}
}

func WithCFRSeed(seed uint64) CFROption {
	return func(c *CFR) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

func NewCFR(options ...CFROption) *CFR {
	c := &CFR{
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

// FindMove runs iterations until the budget elapses, then samples a
// move from the average strategy extracted for the root decision node.
// The root must be a non-terminal decision node with a known roll.
func (c *CFR) FindMove(info game.InformationSet) (game.Move, error) {
	if info.IsTerminal() {
		return game.Move{}, fmt.Errorf("cfr: root position is terminal")
	}
	if info.IsChance() {
		return game.Move{}, fmt.Errorf("cfr: root position has no roll")
	}

	c.table = make(map[string]*node)
	start := c.clock.Now()
	iterations := 0
	for c.withinBudget(start, iterations) {
		pair := infoPair{info, opponentView(info)}
		c.traverse(pair, [3]float64{1, 1, 1})
		iterations++
	}
	log.Debug().Int("iterations", iterations).Str("position", info.Key()).Msg("cfr search complete")

	root, ok := c.table[nodeKey(info)]
	if !ok {
		return game.Move{}, fmt.Errorf("cfr: no statistics collected for the root position within budget")
	}
	return sampleMove(c.rng, root.moves, root.averageStrategy()), nil
}

func (c *CFR) withinBudget(start time.Time, iterations int) bool {
	if c.iterations > 0 {
		return iterations < c.iterations
	}
	return c.clock.Since(start) < c.duration
}

// traverse walks the tree once, returning the expected value from the
// current mover's perspective. reach is [querying player, opponent,
// chance] counterfactual reach probability.
func (c *CFR) traverse(pair infoPair, reach [3]float64) float64 {
	if pair[0].IsTerminal() {
		mover := pair.moverIndex()
		// At a terminal node the side on turn made the settled bid.
		return float64(game.Score(*pair[mover].OwnRoll, *pair[1-mover].OwnRoll,
			pair[mover].BidHistory, pair[mover].OwnerTurn))
	}

	// Chance node: exact expectation over every possible roll for the
	// side still lacking one.
	for i := range pair {
		if pair[i].IsChance() {
			expected := 0.0
			for _, outcome := range game.OutcomeDistribution(pair[i].OwnDice) {
				next := pair
				next[i] = pair[i].WithRoll(outcome.Roll)
				expected += outcome.Prob * c.traverse(next,
					[3]float64{reach[0], reach[1], reach[2] * outcome.Prob})
			}
			return expected
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

	payoff := 0.0
	values := make(map[game.Move]float64, len(moves))
	for _, move := range moves {
		next := infoPair{pair[0].Successor(move), pair[1].Successor(move)}
		nextReach := reach
		nextReach[mover] *= strategy[move]
		// Perspective flips each ply in a zero-sum game.
		value := -c.traverse(next, nextReach)
		values[move] = value
		payoff += strategy[move] * value
	}

	for _, move := range moves {
		entry.regret[move] += reach[1-mover] * reach[2] * (values[move] - payoff)
	}
	return payoff
}
