// Package session provides session management for the Memory Match Game.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management, including stopping engine timers
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own engine, so boards, selections, move counters and
// clocks never leak between sessions.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. IDs are matched
// case-insensitively and generated from crypto/rand, retrying on collision.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session; the first board is dealt immediately
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// Deleting or expiring a session closes its engine, which cancels the
// session clock and any pending settle timer. Sessions live only in memory.
package session
