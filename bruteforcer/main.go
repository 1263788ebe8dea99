// Command bruteforcer plays Memory Match games against a running server
// through the REST API, using a perfect-recall or memoryless strategy.
// The session ID is saved in .session so later runs keep playing it.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/autoplay"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

const sessionFile = ".session"

func newStrategy(name string) (autoplay.Strategy, error) {
	switch name {
	case "memory", "":
		return autoplay.NewMemory(nil), nil
	case "random":
		return autoplay.NewRandom(nil), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (memory, random)", name)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	strategy, err := newStrategy(cmd.String("strategy"))
	if err != nil {
		return err
	}

	serverURL := cmd.String("url")
	log.Info().Str("url", serverURL).Msg("connecting to game server")
	client := NewClient(serverURL)

	savedSessionID := cmd.String("continue")
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	var state *engine.StateView
	if savedSessionID != "" {
		state, err = client.Resume(ctx, savedSessionID)
		if err != nil {
			log.Warn().Err(err).Str("session", savedSessionID).Msg("failed to resume session, creating a new one")
		} else {
			log.Info().Str("session", savedSessionID).Msg("resumed session")
		}
	}

	if state == nil {
		state, err = client.CreateSession(ctx, cmd.String("config"), cmd.Int("difficulty"))
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		log.Info().Str("session", client.SessionID()).Int("difficulty", state.Difficulty).Msg("session created")

		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			log.Warn().Err(err).Msg("failed to save session ID")
		}
	}

	player := &Player{
		client:   client,
		strategy: strategy,
		poll:     cmd.Duration("poll"),
		delay:    cmd.Duration("delay"),
		maxPicks: cmd.Int("max-picks"),
	}

	games := cmd.Int("games")
	totalMoves := 0
	for game := 1; game <= games; game++ {
		// Always start from a fresh board
		state, err = client.NewGame(ctx, cmd.Int("difficulty"))
		if err != nil {
			return fmt.Errorf("new game: %w", err)
		}

		result, err := player.Play(ctx, state)
		if err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}
		totalMoves += result.Moves

		log.Info().Int("game", game).Int("moves", result.Moves).Int("picks", result.Picks).
			Int("ignored", result.Ignored).Int("seconds", result.Seconds).
			Dur("duration", result.Duration).Msg("🎉 victory")
	}

	log.Info().Str("session", client.SessionID()).Int("games", games).
		Float64("mean_moves", float64(totalMoves)/float64(games)).Msg("done")
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "play Memory Match games through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "config", Usage: "preset for a new session (classic, quick, emoji)"},
			&cli.IntFlag{Name: "difficulty", Usage: "board size, 0 keeps the preset default"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.StringFlag{Name: "strategy", Value: "memory", Usage: "memory or random"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "games to play"},
			&cli.IntFlag{Name: "max-picks", Value: 5000, Usage: "maximum picks per game"},
			&cli.DurationFlag{Name: "poll", Value: 100 * time.Millisecond, Usage: "state poll interval while input is locked"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between picks"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("bruteforcer failed")
		os.Exit(1)
	}
}
