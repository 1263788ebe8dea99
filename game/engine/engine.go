package engine

import (
	"fmt"
	"sync"
	"time"
)

// Observer receives a snapshot after every state change. Observers run in
// mutation order while the engine holds its notification lock, so they must
// not call back into the engine.
type Observer func(state *GameState)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	StartGame(difficulty int) error
	SetDifficulty(difficulty int) error
	NewGame() error
	Close()

	// Turns
	SelectCard(id string) SelectOutcome

	// Game state
	GetState() *GameState
	GetStatus() Status
	IsWon() bool
	GetMoveCount() int
	GetElapsedSeconds() int
	GetDifficulty() int
	IsFaceUp(id string) bool

	// Configuration
	GetConfig() *GameConfig

	// History
	GetTurnHistory() []TurnRecord
	GetLastTurn() *TurnRecord

	// Notifications
	Subscribe(observer Observer) (unsubscribe func())
}

// Option customizes a GameEngine
type Option func(*GameEngine)

// WithClock replaces the real-time clock, mostly for tests
func WithClock(clock Clock) Option {
	return func(e *GameEngine) {
		e.clock = clock
	}
}

// WithShuffle replaces the board shuffle
func WithShuffle(shuffle ShuffleFunc) Option {
	return func(e *GameEngine) {
		e.shuffle = shuffle
	}
}

// WithTickInterval changes how often the session clock advances
func WithTickInterval(d time.Duration) Option {
	return func(e *GameEngine) {
		e.tick = d
	}
}

// GameEngine implements the Engine interface
type GameEngine struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	config      *GameConfig
	clock       Clock
	shuffle     ShuffleFunc
	settleDelay time.Duration
	tick        time.Duration

	state      GameState
	index      map[string]int
	history    []TurnRecord
	generation uint64
	closed     bool

	settleTimer Timer
	clockTimer  Timer

	observers    map[int]Observer
	nextObserver int
}

// NewEngine creates an idle game engine for the provided configuration.
// A nil configuration uses DefaultGameConfig.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:      config,
		clock:       RealClock{},
		settleDelay: config.SettleDelay(),
		tick:        TickInterval,
		index:       make(map[string]int),
		observers:   make(map[int]Observer),
		state: GameState{
			Board:      []Card{},
			Selection:  []string{},
			Difficulty: config.Difficulty,
			Status:     StatusIdle,
			ConfigName: config.Name,
			Message:    config.Messages.Welcome,
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// NewEngineWithDefaults creates an idle engine with the classic preset
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, _ := NewEngine(DefaultGameConfig(), opts...)
	return e
}

// StartGame replaces the current game with a fresh board of the given size.
// On error the current game is left untouched.
func (e *GameEngine) StartGame(difficulty int) error {
	board, err := GenerateBoard(difficulty, e.config.Catalog, e.shuffle)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}

	e.stopTimersLocked()
	e.generation++

	e.index = make(map[string]int, len(board))
	for i, card := range board {
		e.index[card.ID] = i
	}
	e.history = nil
	e.state = GameState{
		Board:      board,
		Selection:  []string{},
		Difficulty: difficulty,
		Status:     StatusPlaying,
		ConfigName: e.config.Name,
		Message:    e.config.Messages.Welcome,
		Version:    e.state.Version,
		TotalPairs: len(board) / 2,
	}
	e.scheduleTickLocked(e.generation)

	e.unlockAndNotify()
	return nil
}

// SetDifficulty starts a new game with a different board size
func (e *GameEngine) SetDifficulty(difficulty int) error {
	return e.StartGame(difficulty)
}

// NewGame starts a new game with the current board size
func (e *GameEngine) NewGame() error {
	return e.StartGame(e.GetDifficulty())
}

// Close cancels pending timers and detaches all observers
func (e *GameEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.generation++
	e.stopTimersLocked()
	e.observers = make(map[int]Observer)
}

// SelectCard flips the card with the given ID. The call is ignored when input
// is locked, the game is not running, the card is unknown or matched, or it is
// already the first pick.
func (e *GameEngine) SelectCard(id string) SelectOutcome {
	e.mu.Lock()
	outcome := e.selectLocked(id)
	if !outcome.Accepted {
		e.mu.Unlock()
		return outcome
	}
	e.unlockAndNotify()
	return outcome
}

func (e *GameEngine) selectLocked(id string) SelectOutcome {
	if e.state.Status != StatusPlaying {
		return SelectOutcome{Reason: RejectNotPlaying}
	}
	if e.state.InputLocked {
		return SelectOutcome{Reason: RejectLocked}
	}
	idx, ok := e.index[id]
	if !ok {
		return SelectOutcome{Reason: RejectUnknownCard}
	}
	second := e.state.Board[idx]
	if second.Matched {
		return SelectOutcome{Reason: RejectMatched}
	}
	if len(e.state.Selection) == 1 && e.state.Selection[0] == id {
		return SelectOutcome{Reason: RejectSameCard}
	}

	if len(e.state.Selection) == 0 {
		e.state.Selection = []string{id}
		return SelectOutcome{Accepted: true}
	}

	first := e.state.Board[e.index[e.state.Selection[0]]]
	e.state.Selection = append(e.state.Selection, id)
	e.state.MoveCount++
	e.state.InputLocked = true

	matched := first.Symbol == second.Symbol
	if matched {
		for i := range e.state.Board {
			if e.state.Board[i].Symbol == first.Symbol {
				e.state.Board[i].Matched = true
			}
		}
		e.state.PairsMatched = CountMatchedPairs(e.state.Board)
		e.state.Message = e.config.Messages.Match
	} else {
		e.state.Message = e.config.Messages.Mismatch
	}

	turn := TurnRecord{
		MoveNumber:     e.state.MoveCount,
		FirstCardID:    first.ID,
		SecondCardID:   second.ID,
		FirstSymbol:    first.Symbol,
		SecondSymbol:   second.Symbol,
		Matched:        matched,
		ElapsedSeconds: e.state.ElapsedSeconds,
		Timestamp:      time.Now().Unix(),
	}
	e.history = append(e.history, turn)
	e.state.LastTurn = &turn

	won := e.checkVictoryLocked()
	e.scheduleSettleLocked(e.generation)

	return SelectOutcome{Accepted: true, Evaluated: true, Matched: matched, Won: won}
}

// checkVictoryLocked ends the game once every card is matched
func (e *GameEngine) checkVictoryLocked() bool {
	if e.state.Status != StatusPlaying || !IsBoardComplete(e.state.Board) {
		return false
	}

	e.state.Status = StatusWon
	e.state.Message = fmt.Sprintf(e.config.Messages.Victory, e.state.MoveCount, e.state.ElapsedSeconds)
	if e.clockTimer != nil {
		e.clockTimer.Stop()
		e.clockTimer = nil
	}
	return true
}

func (e *GameEngine) scheduleSettleLocked(gen uint64) {
	if e.settleDelay <= 0 {
		e.settleLocked()
		return
	}
	e.settleTimer = e.clock.AfterFunc(e.settleDelay, func() {
		e.onSettle(gen)
	})
}

func (e *GameEngine) onSettle(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.generation || !e.state.InputLocked {
		e.mu.Unlock()
		return
	}
	e.settleTimer = nil
	e.settleLocked()
	e.unlockAndNotify()
}

func (e *GameEngine) settleLocked() {
	e.state.Selection = []string{}
	e.state.InputLocked = false
}

func (e *GameEngine) scheduleTickLocked(gen uint64) {
	e.clockTimer = e.clock.AfterFunc(e.tick, func() {
		e.onTick(gen)
	})
}

func (e *GameEngine) onTick(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.generation || e.state.Status != StatusPlaying {
		e.mu.Unlock()
		return
	}
	e.state.ElapsedSeconds++
	e.scheduleTickLocked(gen)
	e.unlockAndNotify()
}

func (e *GameEngine) stopTimersLocked() {
	if e.settleTimer != nil {
		e.settleTimer.Stop()
		e.settleTimer = nil
	}
	if e.clockTimer != nil {
		e.clockTimer.Stop()
		e.clockTimer = nil
	}
}

// unlockAndNotify publishes the mutated state. It must be called with e.mu
// held and releases it; the notification lock is taken first so observers see
// snapshots in mutation order.
func (e *GameEngine) unlockAndNotify() {
	e.state.Version++
	snapshot := e.snapshotLocked()
	observers := make([]Observer, 0, len(e.observers))
	for _, o := range e.observers {
		observers = append(observers, o)
	}

	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()

	for _, o := range observers {
		o(cloneState(snapshot))
	}
}

func (e *GameEngine) snapshotLocked() *GameState {
	return cloneState(&e.state)
}

// Subscribe registers an observer and returns a function that removes it
func (e *GameEngine) Subscribe(observer Observer) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = observer

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// GetStatus returns the lifecycle state
func (e *GameEngine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Status
}

// IsWon returns whether every pair has been found
func (e *GameEngine) IsWon() bool {
	return e.GetStatus() == StatusWon
}

// GetMoveCount returns the number of evaluated pairs
func (e *GameEngine) GetMoveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.MoveCount
}

// GetElapsedSeconds returns the session clock
func (e *GameEngine) GetElapsedSeconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ElapsedSeconds
}

// GetDifficulty returns the board size of the current (or next) game
func (e *GameEngine) GetDifficulty() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Difficulty
}

// IsFaceUp reports whether a card is matched or currently selected
func (e *GameEngine) IsFaceUp(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return isFaceUp(&e.state, id)
}

// GetConfig returns the preset this engine was built from
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetTurnHistory returns every evaluated turn of the current game
func (e *GameEngine) GetTurnHistory() []TurnRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := make([]TurnRecord, len(e.history))
	copy(history, e.history)
	return history
}

// GetLastTurn returns the most recent turn, or nil if no pair was evaluated yet
func (e *GameEngine) GetLastTurn() *TurnRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return nil
	}
	turn := e.history[len(e.history)-1]
	return &turn
}
