package api

import (
	"context"
	"fmt"

	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
)

// ActionHandler runs WebSocket client actions against the game service
type ActionHandler struct {
	service service.GameService
}

// NewActionHandler creates an ActionHandler
func NewActionHandler(gameService service.GameService) *ActionHandler {
	return &ActionHandler{service: gameService}
}

// HandleAction implements websocket.ActionHandler. Rejected card picks are
// not errors; the client simply sees no state change.
func (h *ActionHandler) HandleAction(ctx context.Context, sessionID string, action *websocket.ClientAction) error {
	switch action.Action {
	case websocket.ActionSelect:
		if action.CardID == "" {
			return fmt.Errorf("card_id is required")
		}
		_, err := h.service.SelectCard(ctx, sessionID, action.CardID)
		return err
	case websocket.ActionNewGame:
		_, err := h.service.NewGame(ctx, sessionID, action.Difficulty)
		return err
	case websocket.ActionSetDifficulty:
		_, err := h.service.SetDifficulty(ctx, sessionID, action.Difficulty)
		return err
	default:
		return fmt.Errorf("unknown action: %s", action.Action)
	}
}
