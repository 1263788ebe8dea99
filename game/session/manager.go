package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds retries when a generated ID collides
const maxIDAttempts = 16

// Manager handles game session lifecycle
type Manager struct {
	sessions   map[string]*service.Session
	engineOpts []engine.Option
	onRemove   func(id string)
	mu         sync.RWMutex
}

// NewManager creates a new session manager. The engine options are applied to
// every engine the manager builds.
func NewManager(engineOpts ...engine.Option) *Manager {
	return &Manager{
		sessions:   make(map[string]*service.Session),
		engineOpts: engineOpts,
	}
}

// Create creates a new session with the given ID and preset and deals the
// first board at the preset's default size. An empty ID is generated.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if strings.TrimSpace(id) != id {
		return nil, ErrInvalidSessionID
	}

	eng, err := engine.NewEngine(config, m.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.StartGame(eng.GetConfig().Difficulty); err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateUniqueIDLocked()
		if id == "" {
			eng.Close()
			return nil, fmt.Errorf("%w: could not generate a free ID", ErrInvalidSessionID)
		}
	} else if m.sessionExists(id) {
		eng.Close()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         eng.GetConfig(),
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session

	log.Debug().Str("session", id).Str("config", session.Config.Name).
		Int("difficulty", session.Config.Difficulty).Msg("session created")

	return snapshot(session), nil
}

// Get retrieves a session by ID (case-insensitive). The result is a copy;
// its Engine is shared with the stored session.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// snapshot copies a stored session; only the copy leaves the lock
func snapshot(session *service.Session) *service.Session {
	s := *session
	return &s
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		session, err = m.Create(id, config)
		if errors.Is(err, ErrSessionAlreadyExists) {
			// lost a race with another creator
			return m.Get(id)
		}
		return session, err
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, snapshot(session))
	}

	return result
}

// OnRemove registers fn to run with the stored session ID after a session
// is deleted or expires. Close does not call it.
func (m *Manager) OnRemove(fn func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemove = fn
}

// Delete removes a session and stops its timers
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if exists {
		delete(m.sessions, lowerID)
	}
	onRemove := m.onRemove
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	session.Engine.Close()
	if onRemove != nil {
		onRemove(session.ID)
	}
	log.Debug().Str("session", session.ID).Msg("session deleted")
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration and returns how many were removed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			expired = append(expired, session)
		}
	}
	onRemove := m.onRemove
	m.mu.Unlock()

	for _, session := range expired {
		session.Engine.Close()
		if onRemove != nil {
			onRemove(session.ID)
		}
		log.Info().Str("session", session.ID).Time("last_accessed", session.LastAccessedAt).Msg("session expired")
	}

	return len(expired)
}

// Close stops every session's timers and forgets all sessions
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*service.Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Engine.Close()
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateUniqueIDLocked returns a free 4-character hex ID, or "" if none
// was found.
func (m *Manager) generateUniqueIDLocked() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := m.generateSessionID()
		if !m.sessionExists(id) {
			return id
		}
	}
	return ""
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
