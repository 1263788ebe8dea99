package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier StateNotifier
	metrics  MetricsRecorder
	mu       sync.RWMutex
}

// Option configures a game service
type Option func(*gameServiceImpl)

// WithNotifier forwards every engine snapshot of sessions created by the
// service to n.
func WithNotifier(n StateNotifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// WithMetrics records gameplay events on m
func WithMetrics(m MetricsRecorder) Option {
	return func(s *gameServiceImpl) {
		s.metrics = m
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given preset display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new session playing the named preset. A zero
// difficulty uses the preset's default board size.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, difficulty int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, ErrConfigNotFound)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	if difficulty != 0 {
		if err := engine.ValidateDifficulty(difficulty, len(config.Catalog)); err != nil {
			return nil, err
		}
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if difficulty != 0 && difficulty != sess.Engine.GetDifficulty() {
		if err := sess.Engine.SetDifficulty(difficulty); err != nil {
			s.sessions.Delete(sess.ID)
			return nil, err
		}
	}

	s.attach(sess)
	s.gameStarted(sess)

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}, nil
}

// attach forwards the session's engine snapshots to the notifier
func (s *gameServiceImpl) attach(sess *Session) {
	if s.notifier == nil {
		return
	}
	id := sess.ID
	notifier := s.notifier
	sess.Engine.Subscribe(func(state *engine.GameState) {
		notifier.BroadcastToSession(id, state)
	})
}

func (s *gameServiceImpl) gameStarted(sess *Session) {
	if s.metrics != nil {
		s.metrics.GameStarted(sess.Engine.GetDifficulty())
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.sessions.UpdateLastAccessed(sessionID)

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// SelectCard flips a card in the session's current game
func (s *gameServiceImpl) SelectCard(ctx context.Context, sessionID, cardID string) (*SelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	pickedFirst := firstPick(sess.Engine.GetState())
	outcome := sess.Engine.SelectCard(cardID)
	state := sess.Engine.GetState()

	result := &SelectResult{
		Accepted:  outcome.Accepted,
		Reason:    outcome.Reason,
		Evaluated: outcome.Evaluated,
		Matched:   outcome.Matched,
		Won:       outcome.Won,
		GameState: state,
		Message:   state.Message,
		Events:    []GameEvent{},
	}
	if !outcome.Accepted {
		return result, nil
	}

	now := time.Now()
	if !outcome.Evaluated {
		result.Events = append(result.Events, GameEvent{
			Type:      "pick",
			Message:   "Card turned face up",
			Timestamp: now,
			CardIDs:   []string{cardID},
		})
		return result, nil
	}

	pair := []string{pickedFirst, cardID}
	if outcome.Matched {
		result.Events = append(result.Events, GameEvent{
			Type:      "match",
			Message:   sess.Config.Messages.Match,
			Timestamp: now,
			CardIDs:   pair,
		})
	} else {
		result.Events = append(result.Events, GameEvent{
			Type:      "mismatch",
			Message:   sess.Config.Messages.Mismatch,
			Timestamp: now,
			CardIDs:   pair,
		})
	}
	if outcome.Won {
		result.Events = append(result.Events, GameEvent{
			Type:      "victory",
			Message:   state.Message,
			Timestamp: now,
		})
	}

	if s.metrics != nil {
		s.metrics.TurnEvaluated(outcome.Matched)
		if outcome.Won {
			s.metrics.GameWon(state.MoveCount, state.ElapsedSeconds)
		}
	}

	return result, nil
}

func firstPick(state *engine.GameState) string {
	if len(state.Selection) == 1 {
		return state.Selection[0]
	}
	return ""
}

// NewGame starts a fresh game in the session. A zero difficulty keeps the
// current board size.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if difficulty == 0 {
		difficulty = sess.Engine.GetDifficulty()
	}
	if difficulty == 0 {
		difficulty = sess.Config.Difficulty
	}
	if err := sess.Engine.StartGame(difficulty); err != nil {
		return nil, err
	}
	s.gameStarted(sess)

	return sess.Engine.GetState(), nil
}

// SetDifficulty abandons the current game and starts one at the new size.
// An invalid size leaves the current game untouched.
func (s *gameServiceImpl) SetDifficulty(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.SetDifficulty(difficulty); err != nil {
		return nil, err
	}
	s.gameStarted(sess)

	return sess.Engine.GetState(), nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return sess.Engine.GetState(), nil
}

// GetTurnHistory returns paginated turn history for the current game
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetTurnHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	turns := []engine.TurnRecord{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				turns = append(turns, history[i])
			}
		} else {
			turns = append(turns, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig validates and stores a preset
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s.configs.SaveConfig(configName, config)
}
