package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, difficulty int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SelectCard(ctx context.Context, sessionID, cardID string) (*SelectResult, error)
	NewGame(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error)
	SetDifficulty(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// StateNotifier receives engine snapshots for a session
type StateNotifier interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
}

// MetricsRecorder receives gameplay events
type MetricsRecorder interface {
	GameStarted(difficulty int)
	TurnEvaluated(matched bool)
	GameWon(moves, seconds int)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
