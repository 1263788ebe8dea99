package engine

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"

	// Defaults and validation constants
	DefaultDifficulty  = 4
	DefaultSettleDelay = 1000 * time.Millisecond
	TickInterval       = time.Second
	MaxSettleDelayMs   = 10000
)

// ErrInvalidDifficulty is returned when a board of the requested size cannot be built
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// RejectReason explains why a card selection was ignored
type RejectReason string

const (
	RejectNone        RejectReason = ""
	RejectNotPlaying  RejectReason = "not_playing"
	RejectLocked      RejectReason = "input_locked"
	RejectUnknownCard RejectReason = "unknown_card"
	RejectMatched     RejectReason = "already_matched"
	RejectSameCard    RejectReason = "same_card"
)

// Card is a single card on the board
type Card struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	Matched bool   `json:"matched"`
}

// TurnRecord describes one evaluated pair of picks
type TurnRecord struct {
	MoveNumber     int    `json:"move_number"`
	FirstCardID    string `json:"first_card_id"`
	SecondCardID   string `json:"second_card_id"`
	FirstSymbol    string `json:"first_symbol"`
	SecondSymbol   string `json:"second_symbol"`
	Matched        bool   `json:"matched"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Timestamp      int64  `json:"timestamp"`
}

// GameState is a point-in-time snapshot of a game
type GameState struct {
	Board          []Card   `json:"board"`
	Selection      []string `json:"selection"`
	InputLocked    bool     `json:"input_locked"`
	MoveCount      int      `json:"move_count"`
	ElapsedSeconds int      `json:"elapsed_seconds"`
	Difficulty     int      `json:"difficulty"`
	Status         Status   `json:"status"`
	ConfigName     string   `json:"config_name"`
	Message        string   `json:"message"`

	// Version increases on every mutation so subscribers can drop stale snapshots.
	Version      uint64      `json:"version"`
	PairsMatched int         `json:"pairs_matched"`
	TotalPairs   int         `json:"total_pairs"`
	LastTurn     *TurnRecord `json:"last_turn,omitempty"`
}

// Messages holds the player-facing texts of a preset
type Messages struct {
	Welcome  string `json:"welcome"`
	Match    string `json:"match"`
	Mismatch string `json:"mismatch"`
	// Victory receives the move count and the elapsed seconds.
	Victory string `json:"victory"`
}

// GameConfig represents a game preset loaded from JSON
type GameConfig struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Difficulty    int      `json:"difficulty"`
	Difficulties  []int    `json:"difficulties"`
	SettleDelayMs int      `json:"settle_delay_ms"`
	Catalog       []string `json:"catalog"`
	Messages      Messages `json:"messages"`
}

// SelectOutcome reports what a SelectCard call did
type SelectOutcome struct {
	Accepted  bool         `json:"accepted"`
	Reason    RejectReason `json:"reason,omitempty"`
	Evaluated bool         `json:"evaluated"`
	Matched   bool         `json:"matched"`
	Won       bool         `json:"won"`
}

// ErrEngineClosed is returned when a game is started on a closed engine
var ErrEngineClosed = errors.New("engine closed")
