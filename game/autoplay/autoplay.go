package autoplay

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Strategy chooses the next card to flip
type Strategy interface {
	// Observe records every symbol visible in view, including the last evaluated turn.
	Observe(view *engine.StateView)
	// Next returns the card to pick, or false when no pick makes sense right now
	// (input locked, game not in play, nothing left to flip).
	Next(view *engine.StateView) (string, bool)
	// Reset forgets everything, for a fresh board.
	Reset()
}

// Memory plays with perfect recall: it completes known pairs first and
// otherwise explores cards it has never seen.
type Memory struct {
	rng  *rand.Rand
	seen map[string]string
}

// NewMemory creates a perfect-recall strategy. A nil rng uses a random seed.
func NewMemory(rng *rand.Rand) *Memory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Memory{rng: rng, seen: make(map[string]string)}
}

// Known returns how many card symbols the strategy remembers
func (m *Memory) Known() int {
	return len(m.seen)
}

func (m *Memory) Reset() {
	m.seen = make(map[string]string)
}

func (m *Memory) Observe(view *engine.StateView) {
	if view == nil {
		return
	}
	for _, card := range view.Cards {
		if card.FaceUp && card.Symbol != "" {
			m.seen[card.ID] = card.Symbol
		}
	}
	if turn := view.LastTurn; turn != nil {
		m.seen[turn.FirstCardID] = turn.FirstSymbol
		m.seen[turn.SecondCardID] = turn.SecondSymbol
	}
}

func (m *Memory) Next(view *engine.StateView) (string, bool) {
	if !canPick(view) {
		return "", false
	}

	open := openCards(view)
	if len(open) == 0 {
		return "", false
	}

	if first, ok := firstPick(view); ok {
		symbol := m.seen[first]
		for _, id := range open {
			if m.seen[id] == symbol && symbol != "" {
				return id, true
			}
		}
		return m.explore(open), true
	}

	// Any pair already located?
	bySymbol := make(map[string]string)
	for _, id := range open {
		symbol, ok := m.seen[id]
		if !ok {
			continue
		}
		if _, dup := bySymbol[symbol]; dup {
			return id, true
		}
		bySymbol[symbol] = id
	}

	return m.explore(open), true
}

// explore prefers a card never seen before
func (m *Memory) explore(open []string) string {
	var unknown []string
	for _, id := range open {
		if _, ok := m.seen[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return unknown[m.rng.IntN(len(unknown))]
	}
	return open[m.rng.IntN(len(open))]
}

// Random flips any face-down card and remembers nothing
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a memoryless strategy. A nil rng uses a random seed.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Random{rng: rng}
}

func (r *Random) Observe(*engine.StateView) {}

func (r *Random) Reset() {}

func (r *Random) Next(view *engine.StateView) (string, bool) {
	if !canPick(view) {
		return "", false
	}
	open := openCards(view)
	if len(open) == 0 {
		return "", false
	}
	return open[r.rng.IntN(len(open))], true
}

func canPick(view *engine.StateView) bool {
	return view != nil && view.Status == engine.StatusPlaying && !view.InputLocked && len(view.Selection) < 2
}

func firstPick(view *engine.StateView) (string, bool) {
	if len(view.Selection) == 1 {
		return view.Selection[0], true
	}
	return "", false
}

// openCards lists cards that are legal picks: face down and not matched
func openCards(view *engine.StateView) []string {
	ids := make([]string, 0, len(view.Cards))
	for _, card := range view.Cards {
		if !card.Matched && !card.FaceUp {
			ids = append(ids, card.ID)
		}
	}
	return ids
}
