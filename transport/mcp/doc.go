// Package mcp exposes the Memory Match Game to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against
// the api package, so agents and browsers share the same sessions and see
// the same live updates.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board as a size x size text grid ('?' face down, '=' matched)
//   - select_card: by position, row/col, or card_id
//   - new_game, set_difficulty
//   - turn_history: evaluated turns with their symbols
//   - list_configs, game_instructions
//
// Transport Modes:
//
// The server binary serves the tools on POST /mcp and over stdio
// (server.ServeStdio) in the stdio-mcp mode.
package mcp
