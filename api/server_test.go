package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	SelectCardFunc    func(ctx context.Context, sessionID, cardID string) (*service.SelectResult, error)
	NewGameFunc       func(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error)
	SetDifficultyFunc func(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName, difficulty)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		CreatedAt:  time.Now(),
		GameState:  testState(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
		GameState:  testState(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) SelectCard(ctx context.Context, sessionID, cardID string) (*service.SelectResult, error) {
	if m.SelectCardFunc != nil {
		return m.SelectCardFunc(ctx, sessionID, cardID)
	}
	return &service.SelectResult{Accepted: true, GameState: testState()}, nil
}

func (m *MockGameService) NewGame(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error) {
	if m.NewGameFunc != nil {
		return m.NewGameFunc(ctx, sessionID, difficulty)
	}
	return testState(), nil
}

func (m *MockGameService) SetDifficulty(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error) {
	if m.SetDifficultyFunc != nil {
		return m.SetDifficultyFunc(ctx, sessionID, difficulty)
	}
	return testState(), nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return testState(), nil
}

func (m *MockGameService) GetTurnHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetTurnHistoryFunc != nil {
		return m.GetTurnHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Turns:      []engine.TurnRecord{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{
		Name:        configName,
		Description: "Test config",
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// testState is a 2x2 game with one card face up
func testState() *engine.GameState {
	return &engine.GameState{
		Board: []engine.Card{
			{ID: "c0", Symbol: "sun"},
			{ID: "c1", Symbol: "moon"},
			{ID: "c2", Symbol: "sun"},
			{ID: "c3", Symbol: "moon"},
		},
		Selection:  []string{"c1"},
		Difficulty: 2,
		Status:     engine.StatusPlaying,
		TotalPairs: 2,
		Version:    3,
	}
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
					if configName != "" || difficulty != 0 {
						t.Errorf("Expected defaults, got %q/%d", configName, difficulty)
					}
					return &service.SessionInfo{
						ID:             "sess-123",
						ConfigName:     "classic",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
						GameState:      testState(),
						GameConfig:     engine.DefaultGameConfig(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp SessionResponse
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
				if resp.Config == nil || resp.Config.CatalogSize != 18 {
					t.Errorf("Expected config summary, got %+v", resp.Config)
				}
				if len(resp.GameState.Cards) != 4 {
					t.Errorf("Expected 4 cards, got %d", len(resp.GameState.Cards))
				}
			},
		},
		{
			name:        "Create session with config and size",
			requestBody: map[string]interface{}{"config_id": "emoji", "difficulty": 6},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
					if configName != "emoji" || difficulty != 6 {
						t.Errorf("Expected emoji/6, got %s/%d", configName, difficulty)
					}
					return &service.SessionInfo{ID: "sess-456", ConfigName: configName, GameState: testState()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Deprecated config_name",
			requestBody: map[string]string{"config_name": "quick"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
					if configName != "quick" {
						t.Errorf("Expected config name 'quick', got %s", configName)
					}
					return &service.SessionInfo{ID: "sess-789", ConfigName: configName, GameState: testState()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Invalid size",
			requestBody: map[string]interface{}{"difficulty": 5},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: 5x5 board has an odd number of cards", engine.ErrInvalidDifficulty)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'nope' not found: %w", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, difficulty int) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSession_MalformedBody(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{oops"))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "old", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute), GameState: testState()},
			{ID: "mid", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour), GameState: testState()},
			{ID: "new", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now, GameState: testState()},
		}
	}

	tests := []struct {
		name           string
		query          string
		listErr        error
		expectedStatus int
		expectedIDs    []string
		expectedTotal  float64
	}{
		{"default sorts by access, newest first", "", nil, http.StatusOK, []string{"new", "old", "mid"}, 3},
		{"created ascending", "?sort=created&order=asc", nil, http.StatusOK, []string{"old", "mid", "new"}, 3},
		{"limit", "?sort=created&order=desc&limit=2", nil, http.StatusOK, []string{"new", "mid"}, 3},
		{"service error", "", fmt.Errorf("database error"), http.StatusInternalServerError, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					if tt.listErr != nil {
						return nil, tt.listErr
					}
					return sessions(), nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.listErr != nil {
				return
			}

			var resp struct {
				Count    int               `json:"count"`
				Total    float64           `json:"total"`
				Sessions []SessionResponse `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != len(tt.expectedIDs) || resp.Total != tt.expectedTotal {
				t.Errorf("count=%d total=%v", resp.Count, resp.Total)
			}
			for i, id := range tt.expectedIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("sessions[%d] = %s, want %s", i, resp.Sessions[i].ID, id)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		err            error
		expectedStatus int
	}{
		{"existing session", "abcd", nil, http.StatusOK},
		{"missing session", "zzzz", fmt.Errorf("session not found: %w", service.ErrSessionNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if sessionID != tt.sessionID {
						t.Errorf("Expected session ID %s, got %s", tt.sessionID, sessionID)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.SessionInfo{ID: sessionID, GameState: testState()}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/"+tt.sessionID, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	deleted := ""
	mockService := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "gone" {
				return service.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/abcd", nil))
	if w.Code != http.StatusOK || deleted != "abcd" {
		t.Errorf("delete: status=%d deleted=%q", w.Code, deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/gone", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing session, got %d", w.Code)
	}
}

// Game Operation Tests

func TestGetGameState_HidesFaceDownSymbols(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/abcd/state", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "sun") {
		t.Errorf("face-down symbol leaked: %s", body)
	}

	var view engine.StateView
	parseResponse(t, w, &view)
	if !view.Cards[1].FaceUp || view.Cards[1].Symbol != "moon" {
		t.Errorf("selected card not shown face up: %+v", view.Cards[1])
	}
	if view.Cards[0].FaceUp || view.Cards[0].Symbol != "" {
		t.Errorf("hidden card disclosed: %+v", view.Cards[0])
	}
	if view.Version != 3 {
		t.Errorf("Version = %d, want 3", view.Version)
	}
}

func TestGetGameState_NotFound(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return nil, fmt.Errorf("session not found: %w", service.ErrSessionNotFound)
		},
	}
	server := setupTestServer(t, mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/zzzz/state", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestSelectCard(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		result         *service.SelectResult
		err            error
		expectedStatus int
		validateResp   func(*testing.T, *SelectResponse)
	}{
		{
			name:        "accepted pick",
			requestBody: map[string]string{"card_id": "c1"},
			result: &service.SelectResult{
				Accepted:  true,
				GameState: testState(),
				Events:    []service.GameEvent{{Type: "pick", CardIDs: []string{"c1"}}},
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, resp *SelectResponse) {
				if !resp.Accepted || len(resp.Events) != 1 || resp.Events[0].Type != "pick" {
					t.Errorf("unexpected response: %+v", resp)
				}
				if len(resp.GameState.Cards) != 4 {
					t.Errorf("expected game state with 4 cards")
				}
			},
		},
		{
			name:        "ignored pick carries the reason",
			requestBody: map[string]string{"card_id": "c1"},
			result: &service.SelectResult{
				Reason:    engine.RejectLocked,
				GameState: testState(),
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, resp *SelectResponse) {
				if resp.Accepted || resp.Reason != engine.RejectLocked {
					t.Errorf("unexpected response: %+v", resp)
				}
			},
		},
		{
			name:           "missing card id",
			requestBody:    map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown session",
			requestBody:    map[string]string{"card_id": "c1"},
			err:            fmt.Errorf("session not found: %w", service.ErrSessionNotFound),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				SelectCardFunc: func(ctx context.Context, sessionID, cardID string) (*service.SelectResult, error) {
					if sessionID != "abcd" {
						t.Errorf("Expected session abcd, got %s", sessionID)
					}
					return tt.result, tt.err
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/select", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				var resp SelectResponse
				parseResponse(t, w, &resp)
				tt.validateResp(t, &resp)
			}
		})
	}
}

func TestNewGame(t *testing.T) {
	var gotDifficulty = -1
	mockService := &MockGameService{
		NewGameFunc: func(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error) {
			gotDifficulty = difficulty
			if difficulty == 3 {
				return nil, fmt.Errorf("%w: odd", engine.ErrInvalidDifficulty)
			}
			return testState(), nil
		},
	}
	server := setupTestServer(t, mockService)

	// empty body keeps the current size
	req := httptest.NewRequest("POST", "/api/sessions/abcd/new-game", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK || gotDifficulty != 0 {
		t.Errorf("empty body: status=%d difficulty=%d", w.Code, gotDifficulty)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/new-game", map[string]int{"difficulty": 6}))
	if w.Code != http.StatusOK || gotDifficulty != 6 {
		t.Errorf("explicit size: status=%d difficulty=%d", w.Code, gotDifficulty)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/new-game", map[string]int{"difficulty": 3}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid size: status=%d", w.Code)
	}
}

func TestSetDifficulty(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{"valid size", map[string]int{"difficulty": 6}, http.StatusOK},
		{"odd size", map[string]int{"difficulty": 5}, http.StatusBadRequest},
		{"missing size", map[string]int{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				SetDifficultyFunc: func(ctx context.Context, sessionID string, difficulty int) (*engine.GameState, error) {
					if difficulty%2 != 0 {
						return nil, fmt.Errorf("%w: odd", engine.ErrInvalidDifficulty)
					}
					state := testState()
					state.Difficulty = difficulty
					return state, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/difficulty", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		expectedOpts service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"garbage falls back", "?page=x&limit=-1&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				GetTurnHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts != tt.expectedOpts {
						t.Errorf("opts = %+v, want %+v", opts, tt.expectedOpts)
					}
					return &service.HistoryResponse{
						Turns:      []engine.TurnRecord{{MoveNumber: 1, FirstCardID: "c0", SecondCardID: "c2", Matched: true}},
						TotalTurns: 1,
						Page:       opts.Page,
						PageSize:   opts.Limit,
						TotalPages: 1,
					}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/abcd/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			var resp service.HistoryResponse
			parseResponse(t, w, &resp)
			if len(resp.Turns) != 1 || !resp.Turns[0].Matched {
				t.Errorf("unexpected history: %+v", resp)
			}
		})
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{ConfigID: "classic", Name: "Classic", Difficulty: 4, Difficulties: []int{4, 6}, CatalogSize: 18},
				{ConfigID: "quick", Name: "Quick", Difficulty: 2, Difficulties: []int{2, 4}, CatalogSize: 8},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp []service.ConfigInfo
	parseResponse(t, w, &resp)
	if len(resp) != 2 || resp[0].ConfigID != "classic" || len(resp[0].Difficulties) != 2 {
		t.Errorf("unexpected configs: %+v", resp)
	}
}

func TestListConfigs_EmptyIsArray(t *testing.T) {
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) { return nil, nil },
	}
	server := setupTestServer(t, mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))

	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty array, got %s", w.Body.String())
	}
}

func TestGetConfig(t *testing.T) {
	mockService := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName == "missing" {
				return nil, fmt.Errorf("%w: missing", service.ErrConfigNotFound)
			}
			cfg := engine.DefaultGameConfig()
			cfg.Name = configName
			return cfg, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var cfg engine.GameConfig
	parseResponse(t, w, &cfg)
	if cfg.Name != "classic" {
		t.Errorf("extension not stripped: %q", cfg.Name)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestCreateConfig(t *testing.T) {
	var savedAs string
	mockService := &MockGameService{
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.GameConfig) error {
			if err := engine.ValidateGameConfig(config); err != nil {
				return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
			}
			savedAs = configName
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	body := struct {
		ConfigID string `json:"config_id"`
		*engine.GameConfig
	}{"mine", engine.DefaultGameConfig()}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/configs", body))
	if w.Code != http.StatusCreated || savedAs != "mine" {
		t.Errorf("status=%d savedAs=%q body=%s", w.Code, savedAs, w.Body.String())
	}

	invalid := engine.DefaultGameConfig()
	invalid.Catalog = nil
	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/configs", invalid))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid preset, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/configs", map[string]string{}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a name, got %d", w.Code)
	}
}

// Ambient endpoints

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("memorygame_games_won_total 0\n"))
	})
	hub := websocket.NewHub()
	server := NewServer(&MockGameService{}, hub, WithMetricsHandler(metrics))

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("healthz: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "memorygame_games_won_total") {
		t.Errorf("metrics: %d %s", w.Code, w.Body.String())
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", service.ErrConfigNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", engine.ErrInvalidDifficulty), http.StatusBadRequest},
		{fmt.Errorf("x: %w", service.ErrInvalidConfig), http.StatusBadRequest},
		{engine.ErrEngineClosed, http.StatusGone},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	t.Run("missing session parameter", func(t *testing.T) {
		server := setupTestServer(t, &MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		mockService := &MockGameService{
			GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
				return nil, service.ErrSessionNotFound
			},
		}
		server := setupTestServer(t, mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/ws?session=zzzz", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("upgrade sends the current state and forwards clicks", func(t *testing.T) {
		picked := make(chan string, 1)
		mockService := &MockGameService{
			SelectCardFunc: func(ctx context.Context, sessionID, cardID string) (*service.SelectResult, error) {
				picked <- sessionID + "/" + cardID
				return &service.SelectResult{Accepted: true, GameState: testState()}, nil
			},
		}
		hub := websocket.NewHub(websocket.WithActionHandler(NewActionHandler(mockService)))
		go hub.Run()
		defer hub.Stop()

		ts := httptest.NewServer(NewServer(mockService, hub))
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=abcd"
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read initial state: %v", err)
		}
		if message.SessionID != "abcd" || message.GameState == nil || len(message.GameState.Cards) != 4 {
			t.Errorf("unexpected initial message: %+v", message)
		}

		if err := conn.WriteJSON(websocket.ClientAction{Action: websocket.ActionSelect, CardID: "c2"}); err != nil {
			t.Fatal(err)
		}
		select {
		case got := <-picked:
			if got != "abcd/c2" {
				t.Errorf("picked %q, want abcd/c2", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("click did not reach the service")
		}
	})
}
