// Package config provides preset management for the Memory Match Game.
//
// The config package handles:
//   - Loading presets from JSON files
//   - Preset validation
//   - Default preset selection
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are stored as JSON files in the configs directory. Each preset
// defines:
//   - The symbol catalog cards are drawn from (ordered, opaque strings)
//   - The default board size and the sizes offered to players
//   - How long a revealed pair stays face up before it settles
//   - Messages for the welcome, match, mismatch and victory events
//
// Example:
//
//	{
//	  "name": "Classic",
//	  "description": "Sixteen cards, eight pairs",
//	  "difficulty": 4,
//	  "difficulties": [4, 6],
//	  "settle_delay_ms": 1000,
//	  "catalog": ["/card1.png", "/card2.png", "..."],
//	  "messages": {
//	    "welcome": "Find all the pairs!",
//	    "match": "It's a match!",
//	    "mismatch": "No match, try again",
//	    "victory": "You won in %d moves! Time: %ds"
//	  }
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("quick")
//	defaultConfig := manager.GetDefault()
//	presets, err := manager.ListConfigs()
//
// When the directory holds no valid preset the manager falls back to the
// built-in classic preset from the engine package.
package config
