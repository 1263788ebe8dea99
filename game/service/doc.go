// Package service provides the business logic layer for the Memory Match Game.
//
// The service package implements:
//   - Multi-session game management
//   - Preset (configuration) lookup
//   - Card selection, new games and board size changes
//   - Turn history pagination
//   - Fan-out of engine snapshots to live subscribers and metrics
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages preset loading and validation.
// StateNotifier receives every snapshot an engine publishes, including the
// ones produced by the session clock and the settle timer.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation and business logic
// orchestration. Each session owns its own engine instance and timers.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := gameService.CreateSession(ctx, "classic", 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.SelectCard(ctx, info.ID, cardID)
package service
