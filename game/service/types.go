package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// SelectResult contains the result of a card selection
type SelectResult struct {
	Accepted  bool                `json:"accepted"`
	Reason    engine.RejectReason `json:"reason,omitempty"`
	Evaluated bool                `json:"evaluated"`
	Matched   bool                `json:"matched"`
	Won       bool                `json:"won"`
	GameState *engine.GameState   `json:"game_state"`
	Message   string              `json:"message"`
	Events    []GameEvent         `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "pick", "match", "mismatch", "victory", "new_game"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	CardIDs   []string  `json:"card_ids,omitempty"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a preset
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Difficulty   int    `json:"difficulty"`
	Difficulties []int  `json:"difficulties"`
	CatalogSize  int    `json:"catalog_size"`
	SettleDelay  int    `json:"settle_delay_ms"`
}
