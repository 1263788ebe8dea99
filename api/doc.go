// Package api provides HTTP REST API handlers for the Memory Match Game.
//
// The api package implements:
//   - Session management endpoints
//   - Card selection, new game and board size endpoints
//   - Preset listing, lookup and upload
//   - WebSocket upgrade handling
//   - Health and metrics endpoints
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "difficulty": 4})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and stop its timers
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board
//   - POST /api/sessions/{id}/select - Flip a card ({"card_id": "..."})
//   - POST /api/sessions/{id}/new-game - Deal a fresh board ({"difficulty": n}, optional)
//   - POST /api/sessions/{id}/difficulty - Change board size ({"difficulty": n})
//   - GET /api/sessions/{id}/history - Turns of the current game (?page=&limit=&order=)
//
// Configuration:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get a preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /ws?session={id} - Live updates and card clicks
//   - GET /healthz - Liveness
//   - GET /metrics - Prometheus metrics
//
// Boards are returned as engine.StateView: face-down cards never include
// their symbol. Ignored card picks still answer 200 with "accepted": false
// and a reason such as "input_locked" or "already_matched".
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the service
// error (404 unknown session or preset, 400 invalid board size or preset):
//
//	{
//	  "error": "error message"
//	}
package api
