package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession starts a new session and remembers its ID
func (c *Client) CreateSession(ctx context.Context, configID string, difficulty int) (*engine.StateView, error) {
	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}
	if difficulty > 0 {
		body["difficulty"] = difficulty
	}

	var session api.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*engine.StateView, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (*engine.StateView, error) {
	var state engine.StateView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Select(ctx context.Context, cardID string) (*api.SelectResponse, error) {
	var result api.SelectResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/select"), map[string]string{"card_id": cardID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NewGame deals a fresh board; difficulty 0 keeps the current size
func (c *Client) NewGame(ctx context.Context, difficulty int) (*engine.StateView, error) {
	var body interface{}
	if difficulty > 0 {
		body = map[string]int{"difficulty": difficulty}
	}

	var resp struct {
		Message string            `json:"message"`
		State   *engine.StateView `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/new-game"), body, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}
