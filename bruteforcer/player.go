package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/autoplay"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Player drives a Client with a strategy until the board is cleared
type Player struct {
	client   *Client
	strategy autoplay.Strategy
	poll     time.Duration
	delay    time.Duration
	maxPicks int
}

// Result describes one finished game
type Result struct {
	Moves    int
	Picks    int
	Ignored  int
	Seconds  int
	Duration time.Duration
}

// Play picks cards until the game is won, maxPicks is reached or ctx ends.
// While a mismatch is showing it polls the state until input unlocks.
func (p *Player) Play(ctx context.Context, state *engine.StateView) (*Result, error) {
	start := time.Now()
	result := &Result{}
	p.strategy.Reset()

	for state.Status != engine.StatusWon {
		if result.Picks >= p.maxPicks {
			return result, fmt.Errorf("not won after %d picks", result.Picks)
		}

		p.strategy.Observe(state)
		cardID, ok := p.strategy.Next(state)
		if !ok {
			if state.Status != engine.StatusPlaying {
				return result, fmt.Errorf("game is %s", state.Status)
			}
			if err := sleep(ctx, p.poll); err != nil {
				return result, err
			}
			next, err := p.client.GetState(ctx)
			if err != nil {
				return result, err
			}
			state = next
			continue
		}

		resp, err := p.client.Select(ctx, cardID)
		if err != nil {
			return result, err
		}
		result.Picks++
		if !resp.Accepted {
			result.Ignored++
			log.Debug().Str("card", cardID).Str("reason", string(resp.Reason)).Msg("pick ignored")
		} else if resp.Evaluated {
			log.Debug().Bool("matched", resp.Matched).Int("moves", resp.GameState.MoveCount).
				Int("pairs", resp.GameState.PairsMatched).Msg("turn")
		}

		state = resp.GameState
		p.strategy.Observe(state)

		if p.delay > 0 {
			if err := sleep(ctx, p.delay); err != nil {
				return result, err
			}
		}
	}

	result.Moves = state.MoveCount
	result.Seconds = state.ElapsedSeconds
	result.Duration = time.Since(start)
	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
