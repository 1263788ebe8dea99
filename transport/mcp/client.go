package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every pair of matching cards on a face-down square board in as few moves as possible.

AVAILABLE TOOLS:
- create_session: Create a new game session (optional preset and board size)
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Show the board as a grid (face-down cards are '?')
- select_card: Flip a card by position (row-major, 0-based), row/col, or card_id
- new_game: Deal a fresh board
- set_difficulty: Change the board size and deal a fresh board
- turn_history: View evaluated turns of the current game
- list_configs: List available presets
- game_instructions: Get the full rules

NOTE: After a mismatch both cards stay visible briefly and input is locked. Call game_state again before picking.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset and board size",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (optional, see list_configs)",
				},
				"difficulty": map[string]interface{}{
					"type":        "integer",
					"description": "Board side length, e.g. 4 for 4x4 (optional, must give an even card count)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board and counters",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"include_ids": map[string]interface{}{
					"type":        "boolean",
					"description": "Also list the card ID at every position",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_card",
		Description: "Flip a face-down card. Identify it by position, by row and col, or by card_id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Row-major board position, 0-based",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0-based (use with col)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0-based (use with row)",
				},
				"card_id": map[string]interface{}{
					"type":        "string",
					"description": "Card ID from game_state include_ids",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSelectCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Abandon the current game and deal a fresh board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"difficulty": map[string]interface{}{
					"type":        "integer",
					"description": "Board side length (optional, keeps the current size)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_difficulty",
		Description: "Change the board size and start a new game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"difficulty": map[string]interface{}{
					"type":        "integer",
					"description": "Board side length, e.g. 4 or 6",
				},
			},
			Required: []string{"session_id", "difficulty"},
		},
	}, c.handleSetDifficulty)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get the evaluated turns of the current game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTurnHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if d, ok := intArg(args, "difficulty"); ok && d > 0 {
		body["difficulty"] = d
	}

	var session api.SessionResponse
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState, false))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []api.SessionResponse `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s)", s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
		if st := s.GameState; st != nil {
			fmt.Fprintf(&b, " %dx%d %s, pairs %d/%d, moves %d",
				st.Difficulty, st.Difficulty, st.Status, st.PairsMatched, st.TotalPairs, st.MoveCount)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session api.SessionResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	includeIDs, _ := args["include_ids"].(bool)

	var state engine.StateView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state, includeIDs)), nil
}

func (c *Client) handleSelectCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	cardID, _ := args["card_id"].(string)
	if cardID == "" {
		var state engine.StateView
		if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := resolveCard(&state, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cardID = id
	}

	var result api.SelectResponse
	body := map[string]string{"card_id": cardID}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSelectResult(&result)), nil
}

// resolveCard maps position or row/col arguments to a card ID
func resolveCard(state *engine.StateView, args map[string]interface{}) (string, error) {
	pos, ok := intArg(args, "position")
	if !ok {
		row, hasRow := intArg(args, "row")
		col, hasCol := intArg(args, "col")
		if !hasRow || !hasCol {
			return "", fmt.Errorf("provide position, row and col, or card_id")
		}
		if row < 0 || row >= state.Difficulty || col < 0 || col >= state.Difficulty {
			return "", fmt.Errorf("row/col (%d,%d) out of bounds for a %dx%d board", row, col, state.Difficulty, state.Difficulty)
		}
		pos = row*state.Difficulty + col
	}

	if pos < 0 || pos >= len(state.Cards) {
		return "", fmt.Errorf("position %d out of bounds (0-%d)", pos, len(state.Cards)-1)
	}
	return state.Cards[pos].ID, nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	var body interface{}
	if d, ok := intArg(args, "difficulty"); ok && d > 0 {
		body = map[string]int{"difficulty": d}
	}

	return c.resetBoard(ctx, sessionPath(sessionID, "/new-game"), body)
}

func (c *Client) handleSetDifficulty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	d, ok := intArg(args, "difficulty")
	if !ok || d <= 0 {
		return mcp.NewToolResultError("difficulty is required"), nil
	}

	return c.resetBoard(ctx, sessionPath(sessionID, "/difficulty"), map[string]int{"difficulty": d})
}

func (c *Client) resetBoard(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var response struct {
		Message string            `json:"message"`
		State   *engine.StateView `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", path, body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State, false))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		sizes := make([]string, 0, len(cfg.Difficulties))
		for _, d := range cfg.Difficulties {
			sizes = append(sizes, fmt.Sprintf("%dx%d", d, d))
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Board: %dx%d (offers %s), Symbols: %d, Mismatch delay: %dms\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Difficulty, cfg.Difficulty,
			strings.Join(sizes, ", "), cfg.CatalogSize, cfg.SettleDelay)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Turn over pairs of cards and find every matching pair. The game is won when all pairs are matched.
Your score is the number of moves (pairs of picks) and the time taken. Fewer is better.

GAME MECHANICS:
• The board is a square grid (4x4, 6x6, ...). Every symbol appears on exactly two cards.
• A turn is two picks. The first pick turns a card face up.
• The second pick is evaluated immediately:
  - Match: both cards stay face up for the rest of the game.
  - Mismatch: both cards stay visible for a short delay, then turn face down again.
• While a mismatched pair is visible, input is locked and picks are ignored.
• Picks on matched cards, on the card you just picked, or while locked are ignored (not errors).
• The clock starts with the first pick of a game and stops on victory.

BOARD LEGEND (game_state):
• ?      - Face-down card
• symbol - Face-up card of the current turn
• =symbol - Matched card
• Positions are row-major and 0-based: position = row * size + col

STRATEGY:
• Remember every symbol you have seen and where.
• Open an unknown card first. If its partner has been seen before, pick the partner.
• Otherwise, pick another unknown card to learn more.
• After a mismatch, call game_state once the lock clears before picking again.

TOOLS:
• create_session / new_game / set_difficulty to start playing
• select_card with position, row+col, or card_id
• turn_history to review evaluated turns with their symbols

Good luck and sharp memory! 🧠`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *api.SessionResponse) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState, false))
}

func cardLabel(card engine.CardView) string {
	switch {
	case card.Matched:
		return "=" + card.Symbol
	case card.FaceUp:
		return card.Symbol
	default:
		return "?"
	}
}

func formatGameState(state *engine.StateView, includeIDs bool) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	size := state.Difficulty

	fmt.Fprintf(&result, "Board: %dx%d | Moves: %d | Pairs: %d/%d | Time: %ds | Status: %s\n\n",
		size, size, state.MoveCount, state.PairsMatched, state.TotalPairs, state.ElapsedSeconds, state.Status)

	width := 1
	for _, card := range state.Cards {
		if w := utf8.RuneCountInString(cardLabel(card)); w > width {
			width = w
		}
	}

	// Column header
	result.WriteString("    ")
	for col := 0; col < size; col++ {
		fmt.Fprintf(&result, " %-*d", width, col)
	}
	result.WriteString("\n")

	for row := 0; row < size; row++ {
		fmt.Fprintf(&result, "%3d ", row)
		for col := 0; col < size; col++ {
			pos := row*size + col
			label := ""
			if pos < len(state.Cards) {
				label = cardLabel(state.Cards[pos])
			}
			result.WriteString(" " + label + strings.Repeat(" ", width-utf8.RuneCountInString(label)))
		}
		result.WriteString("\n")
	}

	if includeIDs {
		result.WriteString("\nCard IDs:\n")
		for _, card := range state.Cards {
			fmt.Fprintf(&result, "  %d (%d,%d): %s\n", card.Position, card.Row, card.Col, card.ID)
		}
	}

	switch {
	case state.Status == engine.StatusWon:
		result.WriteString("\n🎉 VICTORY!")
	case state.InputLocked:
		result.WriteString("\n⏳ Mismatch showing, input locked")
	case len(state.Selection) == 1:
		result.WriteString("\nOne card face up, pick its partner")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatSelectResult(result *api.SelectResponse) string {
	var b strings.Builder

	switch {
	case !result.Accepted:
		fmt.Fprintf(&b, "✗ Pick ignored (%s)\n", result.Reason)
	case result.Won:
		b.WriteString("✓ Match! All pairs found\n")
	case result.Evaluated && result.Matched:
		b.WriteString("✓ Match\n")
	case result.Evaluated:
		b.WriteString("✗ No match, cards will turn back over\n")
	default:
		b.WriteString("✓ Card flipped\n")
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	b.WriteString("\n" + formatGameState(result.GameState, false))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalTurns)

	if len(history.Turns) == 0 {
		b.WriteString("(no turns evaluated yet)\n")
		return b.String()
	}

	for _, turn := range history.Turns {
		status := "✗"
		if turn.Matched {
			status = "✓"
		}
		fmt.Fprintf(&b, "%d. %s + %s %s [%ds]\n",
			turn.MoveNumber, turn.FirstSymbol, turn.SecondSymbol, status, turn.ElapsedSeconds)
	}

	return b.String()
}
