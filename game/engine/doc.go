// Package engine provides the core game logic for the Memory Match Game.
//
// The engine package implements the game mechanics including:
//   - Board generation from an ordered symbol catalog
//   - Two-pick turns with match evaluation and an input lock
//   - The settle delay that flips mismatched cards back face down
//   - The per-session clock and victory detection
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a snapshot of one game, while
// GameConfig defines the symbol catalog and the board sizes a preset offers.
//
// Usage:
//
//	config := engine.DefaultGameConfig()
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer gameEngine.Close()
//
//	if err := gameEngine.StartGame(4); err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := gameEngine.SelectCard(cardID)
//	state := gameEngine.GetState()
//
// Timers:
//
// Both the settle timer and the session clock are deferred callbacks created
// through a Clock. Every callback carries the generation of the game that
// scheduled it and is dropped once a new game has started, so a replaced board
// is never touched by a timer that belonged to its predecessor.
//
// Game Rules:
//
// A board of difficulty d holds d*d face-down cards, every symbol exactly
// twice. The player reveals two cards per move. Equal symbols stay revealed;
// different symbols flip back after the settle delay. The game is won once
// every card is matched.
package engine
