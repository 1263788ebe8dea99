package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound messages queued per client before it is dropped.
	clientBuffer = 256

	// Broadcasts queued in the hub before new ones are dropped.
	hubBuffer = 1024

	// Time allowed for an inbound action to complete.
	actionTimeout = 5 * time.Second
)

// Inbound actions
const (
	ActionSelect        = "select"
	ActionNewGame       = "new_game"
	ActionSetDifficulty = "set_difficulty"
)

// Message is an outbound WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.StateView `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`

	// disconnect the session's clients once this message is delivered
	closeAfter bool
}

// ClientAction is an inbound WebSocket message
type ClientAction struct {
	Action     string `json:"action"`
	CardID     string `json:"card_id,omitempty"`
	Difficulty int    `json:"difficulty,omitempty"`
}

// ActionHandler executes actions sent by clients. State changes reach the
// clients through the regular broadcasts, so only failures are reported back.
type ActionHandler interface {
	HandleAction(ctx context.Context, sessionID string, action *ClientAction) error
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type directMessage struct {
	client *Client
	data   []byte
}

type countQuery struct {
	sessionID string
	reply     chan int
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID, owned by Run
	sessions map[string]map[*Client]bool

	// Messages fanned out to every client of a session
	broadcast chan *Message

	// Messages for a single client
	direct chan directMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	queries chan countQuery

	handler        ActionHandler
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader

	stop     chan struct{}
	stopOnce sync.Once
}

// HubOption configures a hub
type HubOption func(*Hub)

// WithActionHandler routes inbound client actions to h
func WithActionHandler(h ActionHandler) HubOption {
	return func(hub *Hub) {
		hub.handler = h
	}
}

// WithAllowedOrigins restricts browser connections to the given origins. An
// empty list allows every origin.
func WithAllowedOrigins(origins []string) HubOption {
	return func(hub *Hub) {
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				hub.allowedOrigins[strings.ToLower(o)] = true
			}
		}
	}
}

// NewHub creates a new WebSocket hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		sessions:       make(map[string]map[*Client]bool),
		broadcast:      make(chan *Message, hubBuffer),
		direct:         make(chan directMessage, hubBuffer),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		queries:        make(chan countQuery),
		allowedOrigins: make(map[string]bool),
		stop:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetActionHandler replaces the inbound action handler. It must be called
// before Run.
func (h *Hub) SetActionHandler(handler ActionHandler) {
	h.handler = handler
}

// checkOrigin allows non-browser clients (no Origin header) and, when an
// allow-list is configured, only the listed browser origins.
func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return h.allowedOrigins[strings.ToLower(origin)]
}

// Run starts the hub's event loop and returns after Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case dm := <-h.direct:
			h.sendDirect(dm)

		case q := <-h.queries:
			q.reply <- len(h.sessions[q.sessionID])

		case <-h.stop:
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// Stop terminates Run and disconnects every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

// ServeWS upgrades the request and attaches the connection to a session.
// snapshot, if given, is called once the client is registered and its result
// is sent to that client; updates racing with it carry their own Version.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, snapshot func() *engine.GameState) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, clientBuffer),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.stop:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	if snapshot != nil {
		if state := snapshot(); state != nil {
			h.reply(client, stateMessage(sessionID, state))
		}
	}
}

func stateMessage(sessionID string, state *engine.GameState) *Message {
	return &Message{
		SessionID: sessionID,
		GameState: engine.BuildStateView(state),
		Event:     "state_update",
	}
}

// BroadcastToSession sends a game state update to all clients in a session.
// It never blocks; updates are dropped while the hub queue is full.
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(stateMessage(sessionID, state))
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// CloseSession tells the session's clients it is gone and disconnects them
// after every update queued before it has been delivered.
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.broadcast <- &Message{SessionID: sessionID, Event: "session_closed", closeAfter: true}:
	case <-h.stop:
	}
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Warn().Str("session", message.SessionID).Str("event", message.Event).Msg("hub queue full, dropping message")
	}
}

func encode(message *Message) ([]byte, error) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("event", message.Event).Msg("failed to marshal websocket message")
	}
	return data, err
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Debug().Str("session", client.sessionID).Int("clients", len(h.sessions[client.sessionID])).
		Msg("client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Debug().Str("session", client.sessionID).Int("clients", len(clients)).
				Msg("client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	data, err := encode(message)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.unregisterClient(client)
		}
	}

	if message.closeAfter {
		for client := range clients {
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) sendDirect(dm directMessage) {
	if clients, ok := h.sessions[dm.client.sessionID]; !ok || !clients[dm.client] {
		return
	}
	select {
	case dm.client.send <- dm.data:
	default:
		h.unregisterClient(dm.client)
	}
}

// reply queues a message for one client
func (h *Hub) reply(client *Client, message *Message) {
	data, err := encode(message)
	if err != nil {
		return
	}
	select {
	case h.direct <- directMessage{client: client, data: data}:
	default:
	}
}

// ClientCount returns the number of clients connected to a session. It needs
// a running hub and returns 0 once the hub is stopped.
func (h *Hub) ClientCount(sessionID string) int {
	q := countQuery{sessionID: sessionID, reply: make(chan int, 1)}
	select {
	case h.queries <- q:
	case <-h.stop:
		return 0
	}
	return <-q.reply
}

// dispatch runs one inbound action
func (c *Client) dispatch(raw []byte) {
	var action ClientAction
	if err := json.Unmarshal(raw, &action); err != nil {
		c.hub.reply(c, &Message{SessionID: c.sessionID, Event: "error", Data: "invalid message: " + err.Error()})
		return
	}

	switch action.Action {
	case ActionSelect, ActionNewGame, ActionSetDifficulty:
	default:
		c.hub.reply(c, &Message{SessionID: c.sessionID, Event: "error", Data: "unknown action: " + action.Action})
		return
	}

	if c.hub.handler == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	if err := c.hub.handler.HandleAction(ctx, c.sessionID, &action); err != nil {
		log.Debug().Err(err).Str("session", c.sessionID).Str("action", action.Action).Msg("client action failed")
		c.hub.reply(c, &Message{SessionID: c.sessionID, Event: "error", Data: err.Error()})
	}
}

// readPump pumps actions from the WebSocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("session", c.sessionID).Msg("websocket error")
			}
			break
		}
		c.dispatch(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection. Each
// message is written as its own frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
