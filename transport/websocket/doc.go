// Package websocket provides WebSocket transport for the Memory Match Game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Ordered, non-blocking state broadcasting
//   - Inbound card clicks and game controls
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub goroutine owns
// every connection. Each client connection has a read goroutine and a write
// goroutine. Broadcasts are queued on a buffered channel so the game engine
// never waits on a slow browser; a client whose own queue is full is
// disconnected.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"action": "select", "card_id": "..."}
//     {"action": "new_game", "difficulty": 4}
//     {"action": "set_difficulty", "difficulty": 6}
//   - Outgoing: {"session_id": "abc1", "event": "state_update", "game_state": {...}}
//     or {"event": "error", "data": "..."} when an action fails
//
// Outgoing states use engine.StateView, so face-down cards never carry their
// symbol. Every state has a version; clients drop versions older than the
// last one they rendered.
//
// CloseSession sends a final "session_closed" event and disconnects the
// session's clients once earlier updates are delivered.
//
// Usage:
//
//	hub := websocket.NewHub(
//		websocket.WithActionHandler(handler),
//		websocket.WithAllowedOrigins([]string{"http://localhost:8080"}),
//	)
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), loadState)
//	})
package websocket
