// Command analyze estimates how long each preset takes to clear. For every
// board size a preset offers it plays simulated games with a perfect-recall
// player and a memoryless player and prints the move counts.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/autoplay"
	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// maxPicks bounds a single simulated game
const maxPicks = 200000

// Stats summarizes the move counts of a batch of games
type Stats struct {
	Games int
	Min   int
	Max   int
	Mean  float64
}

func (s *Stats) add(moves int) {
	if s.Games == 0 || moves < s.Min {
		s.Min = moves
	}
	if moves > s.Max {
		s.Max = moves
	}
	s.Mean += (float64(moves) - s.Mean) / float64(s.Games+1)
	s.Games++
}

// SizeReport holds the simulation results for one board size
type SizeReport struct {
	Difficulty int
	Pairs      int
	Memory     Stats
	Random     Stats
}

// idleClock never fires, so simulated games have no clock ticks
type idleClock struct{}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (idleClock) AfterFunc(time.Duration, func()) engine.Timer { return idleTimer{} }

// simulate plays one game to completion and returns the move count
func simulate(cfg *engine.GameConfig, difficulty int, s autoplay.Strategy, rng *rand.Rand) (int, error) {
	sim := *cfg
	sim.SettleDelayMs = 0

	eng, err := engine.NewEngine(&sim, engine.WithClock(idleClock{}), engine.WithShuffle(rng.Shuffle))
	if err != nil {
		return 0, err
	}
	defer eng.Close()

	if err := eng.StartGame(difficulty); err != nil {
		return 0, err
	}
	s.Reset()

	for i := 0; i < maxPicks; i++ {
		view := engine.BuildStateView(eng.GetState())
		if view.Status == engine.StatusWon {
			return view.MoveCount, nil
		}
		s.Observe(view)
		id, ok := s.Next(view)
		if !ok {
			return 0, fmt.Errorf("strategy stalled after %d picks", i)
		}
		eng.SelectCard(id)
		s.Observe(engine.BuildStateView(eng.GetState()))
	}
	return 0, fmt.Errorf("game not finished after %d picks", maxPicks)
}

// analyzePreset simulates games for every board size the preset offers
func analyzePreset(cfg *engine.GameConfig, games int, seed uint64) ([]SizeReport, error) {
	sizes := cfg.Difficulties
	if len(sizes) == 0 {
		sizes = []int{cfg.Difficulty}
	}

	reports := make([]SizeReport, 0, len(sizes))
	for _, d := range sizes {
		report := SizeReport{Difficulty: d, Pairs: engine.PairsFor(d)}
		rng := rand.New(rand.NewPCG(seed, uint64(d)))
		memory := autoplay.NewMemory(rng)
		random := autoplay.NewRandom(rng)

		for g := 0; g < games; g++ {
			moves, err := simulate(cfg, d, memory, rng)
			if err != nil {
				return nil, fmt.Errorf("%dx%d memory game: %w", d, d, err)
			}
			report.Memory.add(moves)

			moves, err = simulate(cfg, d, random, rng)
			if err != nil {
				return nil, fmt.Errorf("%dx%d random game: %w", d, d, err)
			}
			report.Random.add(moves)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func printReport(out io.Writer, info string, cfg *engine.GameConfig, reports []SizeReport) {
	fmt.Fprintf(out, "\n=== Analyzing %s ===\n", info)
	fmt.Fprintf(out, "Name: %s\n", cfg.Name)
	fmt.Fprintf(out, "Catalog: %d symbols, mismatch delay %dms\n", len(cfg.Catalog), cfg.SettleDelayMs)

	for _, r := range reports {
		fmt.Fprintf(out, "%dx%d (%d pairs)\n", r.Difficulty, r.Difficulty, r.Pairs)
		fmt.Fprintf(out, "  perfect recall: min %d  mean %.1f  max %d\n", r.Memory.Min, r.Memory.Mean, r.Memory.Max)
		fmt.Fprintf(out, "  no memory:      min %d  mean %.1f  max %d\n", r.Random.Min, r.Random.Mean, r.Random.Max)

		// Mismatches each cost one settle delay on top of thinking time
		mismatches := r.Memory.Mean - float64(r.Pairs)
		wait := time.Duration(math.Round(mismatches)) * cfg.SettleDelay()
		fmt.Fprintf(out, "  locked time for a perfect player: ~%s\n", wait)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	games := cmd.Int("games")
	seed := uint64(cmd.Int("seed"))
	for _, info := range presets {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", info.Filename, err)
			continue
		}

		reports, err := analyzePreset(cfg, games, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", info.Filename, err)
		}
		printReport(os.Stdout, info.Filename, cfg, reports)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "simulate games for every preset and board size",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing presets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.IntFlag{Name: "games", Value: 200, Usage: "games per strategy and board size"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "random seed"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
