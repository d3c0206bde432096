package evaluator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"liarsdice/agent"
	"liarsdice/searcher"
)

// AgentSpec names an agent kind and its knobs so a schedule file can
// describe a matchup without code.
type AgentSpec struct {
	Kind    string        `yaml:"kind"`              // mcts, cfr, montecfr, rule, conservative, random
	Budget  time.Duration `yaml:"budget,omitempty"`  // per-move search budget
	Epsilon float64       `yaml:"epsilon,omitempty"` // conservative bluff probability
	Seed    uint64        `yaml:"seed,omitempty"`
}

// MatchupSpec is one scheduled matchup between two agents.
type MatchupSpec struct {
	Label     string    `yaml:"label"`
	A         AgentSpec `yaml:"a"`
	B         AgentSpec `yaml:"b"`
	ADice     int       `yaml:"a_dice"`
	BDice     int       `yaml:"b_dice"`
	Games     int       `yaml:"games"`
	Alternate bool      `yaml:"alternate"`
}

// Schedule is a YAML-decodable list of matchups.
type Schedule struct {
	Matchups []MatchupSpec `yaml:"matchups"`
}

// LoadSchedule reads and validates a schedule file.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	var schedule Schedule
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("load schedule %s: %w", path, err)
	}
	for i, matchup := range schedule.Matchups {
		if matchup.ADice <= 0 || matchup.BDice <= 0 {
			return nil, fmt.Errorf("load schedule %s: matchup %d: dice counts must be positive", path, i+1)
		}
		if matchup.Games <= 0 {
			return nil, fmt.Errorf("load schedule %s: matchup %d: games must be positive", path, i+1)
		}
	}
	return &schedule, nil
}

// Build constructs the agent the spec describes. Search engines
// default to a 100ms per-move budget when the spec leaves it unset.
func (s AgentSpec) Build() (agent.Agent, error) {
	budget := s.Budget
	if budget <= 0 {
		budget = 100 * time.Millisecond
	}
	seed := s.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	epsilon := s.Epsilon
	if epsilon <= 0 || epsilon >= 1 {
		epsilon = searcher.DefaultEpsilon
	}

	switch s.Kind {
	case "mcts":
		return searcher.NewMCTS(
			searcher.WithMCTSBudget(budget),
			searcher.WithMCTSEpsilon(epsilon),
			searcher.WithMCTSSeed(seed)), nil
	case "cfr":
		return searcher.NewCFR(
			searcher.WithCFRBudget(budget),
			searcher.WithCFRSeed(seed)), nil
	case "montecfr":
		return searcher.NewMonteCarloCFR(
			searcher.WithMonteCarloCFRBudget(budget),
			searcher.WithMonteCarloCFRSeed(seed)), nil
	case "rule":
		return agent.NewRuleBased(seed), nil
	case "conservative":
		return agent.NewConservative(epsilon, seed), nil
	case "random":
		return agent.NewRandom(seed), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", s.Kind)
	}
}
