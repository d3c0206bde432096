package searcher

import (
	"fmt"
	"math"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"liarsdice/game"
)

// DefaultEpsilon is the bluff probability assumed of the opponent by
// both the tree traversal and the determinization posterior.
const DefaultEpsilon = 0.2

// MCTS is a single-observer Monte Carlo tree search: UCB1 selection on
// the observer's decision nodes, a heuristic epsilon-conservative model
// for the opponent, and a fresh belief-weighted determinization of the
// opponent's hidden roll before every traversal. Nodes are memoized by
// bid history so traversals under different determinizations share
// statistics. Each FindMove call owns its own tree.
type MCTS struct {
	duration   time.Duration
	traversals int
	epsilon    float64
	clock      quartz.Clock
	rng        *rand.Rand
	memo       map[string]*isNode
}

type MCTSOption func(*MCTS)

func WithMCTSBudget(duration time.Duration) MCTSOption {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithMCTSTraversals(traversals int) MCTSOption {
	return func(m *MCTS) {
		if traversals > 0 {
			m.traversals = traversals
		}
	}
}

func WithMCTSEpsilon(epsilon float64) MCTSOption {
	return func(m *MCTS) {
		if epsilon > 0 && epsilon < 1 {
			m.epsilon = epsilon
		}
	}
}

func WithMCTSClock(clock quartz.Clock) MCTSOption {
	return func(m *MCTS) {
		m.clock = clock
	}
}

func WithMCTSSeed(seed uint64) MCTSOption {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func NewMCTS(options ...MCTSOption) *MCTS {
	m := &MCTS{
		epsilon: DefaultEpsilon,
		clock:   quartz.NewReal(),
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	for _, option := range options {
		option(m)
	}
	if m.duration <= 0 && m.traversals <= 0 {
		panic("Must specify search traversals or duration")
	}
	return m
}

// isNode wraps one information set with visit statistics. edges stays
// nil until the node is expanded.
type isNode struct {
	info    game.InformationSet
	edges   []*edge
	visits  int
	rewards float64
}

type edge struct {
	move       game.Move
	child      *isNode
	selections int
}

// ucb scores an edge for selection. Unexplored edges have infinite
// priority.
func (e *edge) ucb(parentVisits int) float64 {
	if e.selections == 0 || e.child.visits == 0 {
		return math.Inf(1)
	}
	exploit := e.child.rewards / float64(e.child.visits)
	explore := math.Sqrt(2 * math.Log(float64(parentVisits)) / float64(e.selections))
	return exploit + explore
}

// FindMove searches until the budget elapses, then returns the root
// action with the highest mean reward. The root must be a non-terminal
// observer position with a known roll.
func (m *MCTS) FindMove(info game.InformationSet) (game.Move, error) {
	if info.IsTerminal() {
		return game.Move{}, fmt.Errorf("mcts: root position is terminal")
	}
	if info.IsChance() {
		return game.Move{}, fmt.Errorf("mcts: root position has no roll")
	}

	m.memo = make(map[string]*isNode)
	root := m.lookup(info)

	// The observer moves at the root, so it also opened the bidding iff
	// an even number of bids precede the root.
	ownerBidFirst := len(info.BidHistory)%2 == 0
	rolls, weights := beliefDistribution(info.OpponentDice, info.BidHistory, ownerBidFirst, m.epsilon)

	start := m.clock.Now()
	traversals := 0
	for m.withinBudget(start, traversals) {
		determinization := sampleRollWeighted(m.rng, rolls, weights)
		m.traverse(root, determinization)
		traversals++
	}
	log.Debug().Int("traversals", traversals).Str("position", info.Key()).Msg("mcts search complete")

	if root.edges == nil {
		// Budget too small to expand the root even once.
		moves := info.PossibleMoves()
		return moves[m.rng.Intn(len(moves))], nil
	}

	best := root.edges[0]
	bestMean := math.Inf(-1)
	for _, e := range root.edges {
		if e.child.visits == 0 {
			continue
		}
		if mean := e.child.rewards / float64(e.child.visits); mean > bestMean {
			bestMean = mean
			best = e
		}
	}
	return best.move, nil
}

func (m *MCTS) withinBudget(start time.Time, traversals int) bool {
	if m.traversals > 0 {
		return traversals < m.traversals
	}
	return m.clock.Since(start) < m.duration
}

// lookup returns the memoized node for the information set, creating
// it on first sight.
func (m *MCTS) lookup(info game.InformationSet) *isNode {
	key := info.Key()
	if n, ok := m.memo[key]; ok {
		return n
	}
	n := &isNode{info: info}
	m.memo[key] = n
	return n
}

// traverse runs one selection/expansion/simulation pass under the
// given determinization of the opponent's roll and backs the reward up
// the visited path.
func (m *MCTS) traverse(n *isNode, determinization game.Roll) float64 {
	if n.info.IsTerminal() {
		reward := float64(game.Score(*n.info.OwnRoll, determinization,
			n.info.BidHistory, n.info.OwnerTurn))
		n.rewards += reward
		n.visits++
		return reward
	}

	var reward float64
	switch {
	case !n.info.OwnerTurn:
		// Opponent turn: model the move with the epsilon-conservative
		// policy under the current determinization.
		move := m.conservativeMove(determinization, n.info.PossibleMoves())
		reward = m.traverse(m.lookup(n.info.Successor(move)), determinization)
	case n.edges != nil:
		e := m.selectEdge(n)
		e.selections++
		reward = m.traverse(e.child, determinization)
	default:
		// First visit to an observer decision node: expand one level,
		// then simulate from one child picked uniformly at random.
		m.expand(n)
		e := n.edges[m.rng.Intn(len(n.edges))]
		e.selections++
		reward = m.playout(e.child.info, determinization)
		e.child.rewards += reward
		e.child.visits++
	}
	n.rewards += reward
	n.visits++
	return reward
}

func (m *MCTS) expand(n *isNode) {
	moves := n.info.PossibleMoves()
	n.edges = make([]*edge, len(moves))
	for i, move := range moves {
		n.edges[i] = &edge{move: move, child: m.lookup(n.info.Successor(move))}
	}
}

// selectEdge applies UCB1 over the node's edges, first-found on ties.
// An unvisited node picks uniformly at random.
func (m *MCTS) selectEdge(n *isNode) *edge {
	if n.visits == 0 {
		return n.edges[m.rng.Intn(len(n.edges))]
	}
	best := n.edges[0]
	bestScore := math.Inf(-1)
	for _, e := range n.edges {
		score := e.ucb(n.visits)
		if math.IsInf(score, 1) {
			return e
		}
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best
}

// playout plays uniformly random legal moves for both sides until the
// bidding settles, then scores the terminal position against the
// determinization.
func (m *MCTS) playout(info game.InformationSet, determinization game.Roll) float64 {
	current := info
	for !current.IsTerminal() {
		moves := current.PossibleMoves()
		current = current.Successor(moves[m.rng.Intn(len(moves))])
	}
	return float64(game.Score(*current.OwnRoll, determinization,
		current.BidHistory, current.OwnerTurn))
}

// conservativeMove draws from the epsilon-conservative opponent model:
// with probability epsilon any legal move (a bluff), otherwise a
// uniform choice among bids the determinized roll actually supports,
// falling back to a challenge when it supports none.
func (m *MCTS) conservativeMove(roll game.Roll, moves []game.Move) game.Move {
	if m.rng.Float64() < m.epsilon {
		return moves[m.rng.Intn(len(moves))]
	}
	var viable []game.Move
	for _, move := range moves {
		if !move.Challenge && roll.Supports(move.Bid) {
			viable = append(viable, move)
		}
	}
	if len(viable) > 0 {
		return viable[m.rng.Intn(len(viable))]
	}
	last := moves[len(moves)-1]
	if last.Challenge {
		return last
	}
	// No challenge available (opening move) and nothing supported:
	// bluff with any legal move.
	return moves[m.rng.Intn(len(moves))]
}

// beliefDistribution computes the Bayesian posterior over the
// opponent's hidden roll, conditioned on the bids they already made
// under the epsilon-conservative assumption: every roll starts with
// weight 1, and each opponent bid a candidate roll supports multiplies
// its weight by 1/epsilon. The result sums to 1.
func beliefDistribution(opponentDice int, history []game.Move, ownerBidFirst bool, epsilon float64) ([]game.Roll, []float64) {
	rolls := game.AllRolls(opponentDice)
	weights := make([]float64, len(rolls))
	boost := 1 / epsilon
	for i, roll := range rolls {
		weight := 1.0
		ownerTurn := ownerBidFirst
		for _, move := range history {
			if !ownerTurn && !move.Challenge && roll.Supports(move.Bid) {
				weight *= boost
			}
			ownerTurn = !ownerTurn
		}
		weights[i] = weight
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}
	return rolls, weights
}

func sampleRollWeighted(rng *rand.Rand, rolls []game.Roll, weights []float64) game.Roll {
	target := rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return rolls[i]
		}
	}
	return rolls[len(rolls)-1]
}
