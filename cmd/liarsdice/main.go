package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"liarsdice/evaluator"
	"liarsdice/game"
)

type CLI struct {
	Verbose bool `short:"v" help:"Debug logging"`

	Matchup MatchupCmd `cmd:"" help:"Run agent matchups and print win rates"`
	Move    MoveCmd    `cmd:"" help:"Print one agent's move for a position"`
}

type MatchupCmd struct {
	Config    string        `help:"YAML schedule of matchups" type:"path"`
	A         string        `default:"mcts" help:"First agent: mcts, cfr, montecfr, rule, conservative, random"`
	B         string        `default:"random" help:"Second agent"`
	ADice     int           `default:"5" help:"First agent's dice"`
	BDice     int           `default:"5" help:"Second agent's dice"`
	Games     int           `default:"10" help:"Games per matchup"`
	Budget    time.Duration `default:"100ms" help:"Per-move search budget"`
	Alternate bool          `default:"true" negatable:"" help:"Alternate the first mover"`
	Seed      int64         `default:"0" help:"RNG seed (0 for random)"`
}

type MoveCmd struct {
	Agent   string        `default:"mcts" help:"Agent: mcts, cfr, montecfr, rule, conservative, random"`
	OwnDice int           `default:"5" help:"Own dice count"`
	OppDice int           `default:"5" help:"Opponent dice count"`
	Roll    string        `help:"Own face counts, e.g. 1,0,2,0,2,0 (random if omitted)"`
	Bids    string        `help:"Bid prefix, e.g. 2x5,3x2"`
	Budget  time.Duration `default:"1s" help:"Search budget"`
	Seed    int64         `default:"0" help:"RNG seed (0 for random)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("liarsdice"),
		kong.Description("Equilibrium-approximating agents for two-player Liar's Dice, ones wild."))

	level := zerolog.InfoLevel
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	ctx.FatalIfErrorf(ctx.Run())
}

func (c *MatchupCmd) Run() error {
	seed := uint64(c.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	var matchups []evaluator.MatchupSpec
	if c.Config != "" {
		schedule, err := evaluator.LoadSchedule(c.Config)
		if err != nil {
			return err
		}
		matchups = schedule.Matchups
	} else {
		matchups = []evaluator.MatchupSpec{{
			Label:     fmt.Sprintf("%s v. %s, %d and %d dice", c.A, c.B, c.ADice, c.BDice),
			A:         evaluator.AgentSpec{Kind: c.A, Budget: c.Budget},
			B:         evaluator.AgentSpec{Kind: c.B, Budget: c.Budget},
			ADice:     c.ADice,
			BDice:     c.BDice,
			Games:     c.Games,
			Alternate: c.Alternate,
		}}
	}

	fmt.Println("===== EVALUATION RESULTS =====")
	for _, spec := range matchups {
		a, err := spec.A.Build()
		if err != nil {
			return err
		}
		b, err := spec.B.Build()
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := evaluator.RunMatchup(rng, a, b, spec.ADice, spec.BDice, spec.Games, spec.Alternate, spec.Label)
		if err != nil {
			return err
		}
		low, high := result.Stats.ConfidenceInterval95()
		fmt.Printf("%s: %.1f%% win rate over %d games (mean %+.3f, 95%% CI [%+.3f, %+.3f], %v)\n",
			result.Label, 100*result.WinRate(), result.Games,
			result.Stats.Mean(), low, high, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func (c *MoveCmd) Run() error {
	seed := uint64(c.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	roll, err := parseRoll(c.Roll, c.OwnDice)
	if err != nil {
		return err
	}
	prefix, err := parseBids(c.Bids)
	if err != nil {
		return err
	}

	position := game.NewPosition(rng, c.OwnDice, c.OppDice, roll, prefix, true)
	player, err := evaluator.AgentSpec{Kind: c.Agent, Budget: c.Budget, Seed: seed}.Build()
	if err != nil {
		return err
	}

	move, err := player.FindMove(position)
	if err != nil {
		return err
	}
	fmt.Printf("Roll: %v\n", *position.OwnRoll)
	fmt.Printf("Bids: %s\n", position.Key())
	fmt.Printf("%s move choice: %s\n", c.Agent, move)
	return nil
}

// parseRoll reads face counts like "1,0,2,0,2,0". An empty string
// leaves the roll to be drawn at random.
func parseRoll(s string, ownDice int) (*game.Roll, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != game.NumFaces {
		return nil, fmt.Errorf("roll %q: want %d face counts", s, game.NumFaces)
	}
	var roll game.Roll
	for i, part := range parts {
		count, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("roll %q: bad count %q", s, part)
		}
		roll[i] = count
	}
	if roll.Total() != ownDice {
		return nil, fmt.Errorf("roll %q: counts sum to %d, want %d", s, roll.Total(), ownDice)
	}
	return &roll, nil
}

// parseBids reads a bid prefix like "2x5,3x2".
func parseBids(s string) ([]game.Move, error) {
	if s == "" {
		return nil, nil
	}
	var moves []game.Move
	var last game.Bid
	for _, part := range strings.Split(s, ",") {
		quantityStr, faceStr, ok := strings.Cut(strings.TrimSpace(part), "x")
		if !ok {
			return nil, fmt.Errorf("bid %q: want quantity x face, e.g. 2x5", part)
		}
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil || quantity < 1 {
			return nil, fmt.Errorf("bid %q: bad quantity", part)
		}
		face, err := strconv.Atoi(faceStr)
		if err != nil || face < game.MinBidFace || face > game.NumFaces {
			return nil, fmt.Errorf("bid %q: face must be %d..%d", part, game.MinBidFace, game.NumFaces)
		}
		bid := game.Bid{Quantity: quantity, Face: face}
		if len(moves) > 0 && !bid.Beats(last) {
			return nil, fmt.Errorf("bid %q does not raise %s", part, last)
		}
		moves = append(moves, game.Move{Bid: bid})
		last = bid
	}
	return moves, nil
}
