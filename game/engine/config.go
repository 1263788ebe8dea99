package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// SettleDelay returns the preset's settle delay as a duration
func (c *GameConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate catalog
	if len(config.Catalog) < 1 {
		return fmt.Errorf("config validation: catalog must contain at least one symbol")
	}
	seen := make(map[string]int, len(config.Catalog))
	for i, symbol := range config.Catalog {
		if strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("config validation: catalog entry %d is blank", i+1)
		}
		if prev, ok := seen[symbol]; ok {
			return fmt.Errorf("config validation: catalog entry %d duplicates entry %d (%q)", i+1, prev+1, symbol)
		}
		seen[symbol] = i
	}

	// Validate board sizes
	if err := ValidateDifficulty(config.Difficulty, len(config.Catalog)); err != nil {
		return fmt.Errorf("config validation: difficulty: %w", err)
	}
	for _, d := range config.Difficulties {
		if err := ValidateDifficulty(d, len(config.Catalog)); err != nil {
			return fmt.Errorf("config validation: difficulties: %w", err)
		}
	}

	// Validate timing
	if config.SettleDelayMs < 0 || config.SettleDelayMs > MaxSettleDelayMs {
		return fmt.Errorf("config validation: settle_delay_ms must be between 0 and %d, got %d",
			MaxSettleDelayMs, config.SettleDelayMs)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if strings.Count(config.Messages.Victory, "%d") != 2 {
		return fmt.Errorf("config validation: messages.victory must contain %%d for moves and %%d for seconds")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in classic preset: 4x4 by default,
// with enough symbols for a 6x6 board.
func DefaultGameConfig() *GameConfig {
	catalog := make([]string, 18)
	for i := range catalog {
		catalog[i] = fmt.Sprintf("/card%d.png", i+1)
	}

	return &GameConfig{
		Name:          "classic",
		Description:   "Classic memory match with 4x4 and 6x6 boards",
		Difficulty:    DefaultDifficulty,
		Difficulties:  []int{4, 6},
		SettleDelayMs: int(DefaultSettleDelay / time.Millisecond),
		Catalog:       catalog,
		Messages: Messages{
			Welcome:  "Find all the pairs!",
			Match:    "It's a match!",
			Mismatch: "No match, try again",
			Victory:  "You won in %d moves! Time: %ds",
		},
	}
}
