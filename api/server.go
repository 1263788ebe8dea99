package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	metrics http.Handler
	router  *mux.Router
}

// ServerOption configures a server
type ServerOption func(*Server)

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...ServerOption) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/sessions/{id}/new-game", s.handleNewGame).Methods("POST")
	api.HandleFunc("/sessions/{id}/difficulty", s.handleSetDifficulty).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidDifficulty), errors.Is(err, service.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrEngineClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// SessionResponse is the public form of a session
type SessionResponse struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.StateView   `json:"game_state"`
	Config         *service.ConfigInfo `json:"config,omitempty"`
}

func newSessionResponse(info *service.SessionInfo) *SessionResponse {
	resp := &SessionResponse{
		ID:             info.ID,
		ConfigName:     info.ConfigName,
		CreatedAt:      info.CreatedAt,
		LastAccessedAt: info.LastAccessedAt,
		GameState:      engine.BuildStateView(info.GameState),
	}
	if cfg := info.GameConfig; cfg != nil {
		resp.Config = &service.ConfigInfo{
			ConfigID:     info.ConfigName,
			Name:         cfg.Name,
			Description:  cfg.Description,
			Difficulty:   cfg.Difficulty,
			Difficulties: cfg.Difficulties,
			CatalogSize:  len(cfg.Catalog),
			SettleDelay:  cfg.SettleDelayMs,
		}
	}
	return resp
}

// SelectResponse is the public form of a card selection result
type SelectResponse struct {
	Accepted  bool                `json:"accepted"`
	Reason    engine.RejectReason `json:"reason,omitempty"`
	Evaluated bool                `json:"evaluated"`
	Matched   bool                `json:"matched"`
	Won       bool                `json:"won"`
	Message   string              `json:"message"`
	Events    []service.GameEvent `json:"events"`
	GameState *engine.StateView   `json:"game_state"`
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
		Difficulty int    `json:"difficulty,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID, req.Difficulty)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session", info.ID).Str("config", info.ConfigName).
		Int("difficulty", info.GameState.Difficulty).Msg("session created")

	respondJSON(w, http.StatusCreated, newSessionResponse(info))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	out := make([]*SessionResponse, 0, len(sessions))
	for _, info := range sessions {
		out = append(out, newSessionResponse(info))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(out),
		"total":    total,
		"sessions": out,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newSessionResponse(info))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	// connected clients are dropped by the session manager's removal hook
	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, engine.BuildStateView(state))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		CardID string `json:"card_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CardID == "" {
		respondError(w, http.StatusBadRequest, "card_id is required")
		return
	}

	result, err := s.service.SelectCard(r.Context(), sessionID, req.CardID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Broadcasts come from the engine itself; this is just the compact trail.
	evt := log.Debug().Str("session", sessionID).Str("card", req.CardID).Bool("accepted", result.Accepted)
	if result.Accepted {
		evt = evt.Bool("evaluated", result.Evaluated).Bool("matched", result.Matched).
			Int("moves", result.GameState.MoveCount)
		if result.Won {
			evt = evt.Bool("won", true).Int("seconds", result.GameState.ElapsedSeconds)
		}
	} else {
		evt = evt.Str("reason", string(result.Reason))
	}
	evt.Msg("select")

	respondJSON(w, http.StatusOK, &SelectResponse{
		Accepted:  result.Accepted,
		Reason:    result.Reason,
		Evaluated: result.Evaluated,
		Matched:   result.Matched,
		Won:       result.Won,
		Message:   result.Message,
		Events:    result.Events,
		GameState: engine.BuildStateView(result.GameState),
	})
}

// decodeDifficulty reads {"difficulty": n}; an empty body yields 0
func decodeDifficulty(r *http.Request) (int, error) {
	var req struct {
		Difficulty int `json:"difficulty"`
	}
	if r.Body == nil || r.ContentLength == 0 {
		return 0, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, err
	}
	return req.Difficulty, nil
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	difficulty, err := decodeDifficulty(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.NewGame(r.Context(), sessionID, difficulty)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "New game started",
		"state":   engine.BuildStateView(state),
	})
}

func (s *Server) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	difficulty, err := decodeDifficulty(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if difficulty == 0 {
		respondError(w, http.StatusBadRequest, "difficulty is required")
		return
	}

	state, err := s.service.SetDifficulty(r.Context(), sessionID, difficulty)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Board size set to %dx%d", difficulty, difficulty),
		"state":   engine.BuildStateView(state),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetTurnHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if configs == nil {
		configs = []*service.ConfigInfo{}
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.Name
	}
	if configID == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), configID, &req.GameConfig); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, info.ID, func() *engine.GameState {
		state, err := s.service.GetGameState(r.Context(), info.ID)
		if err != nil {
			return nil
		}
		return state
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrade take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		evt := log.Debug()
		if rec.status >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("method", r.Method).Str("path", r.URL.Path).Int("status", rec.status).
			Dur("duration", time.Since(start)).Msg("http request")
	})
}
