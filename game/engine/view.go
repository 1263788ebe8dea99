package engine

// CardView is the transport-facing form of a card. The symbol is only
// disclosed while the card is face up.
type CardView struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	FaceUp   bool   `json:"face_up"`
	Matched  bool   `json:"matched"`
	Symbol   string `json:"symbol,omitempty"`
}

// StateView is the transport-facing form of a game snapshot
type StateView struct {
	Cards          []CardView  `json:"cards"`
	Selection      []string    `json:"selection"`
	InputLocked    bool        `json:"input_locked"`
	MoveCount      int         `json:"move_count"`
	ElapsedSeconds int         `json:"elapsed_seconds"`
	Difficulty     int         `json:"difficulty"`
	Status         Status      `json:"status"`
	ConfigName     string      `json:"config_name"`
	Message        string      `json:"message"`
	Version        uint64      `json:"version"`
	PairsMatched   int         `json:"pairs_matched"`
	TotalPairs     int         `json:"total_pairs"`
	LastTurn       *TurnRecord `json:"last_turn,omitempty"`
}

// BuildCardViews projects a board into card views laid out row by row
func BuildCardViews(state *GameState) []CardView {
	selected := make(map[string]bool, len(state.Selection))
	for _, id := range state.Selection {
		selected[id] = true
	}

	cols := state.Difficulty
	if cols <= 0 {
		cols = 1
	}

	views := make([]CardView, len(state.Board))
	for i, card := range state.Board {
		faceUp := card.Matched || selected[card.ID]
		views[i] = CardView{
			ID:       card.ID,
			Position: i,
			Row:      i / cols,
			Col:      i % cols,
			FaceUp:   faceUp,
			Matched:  card.Matched,
		}
		if faceUp {
			views[i].Symbol = card.Symbol
		}
	}
	return views
}

// BuildStateView projects a snapshot for presentation. A nil state yields nil.
func BuildStateView(state *GameState) *StateView {
	if state == nil {
		return nil
	}

	selection := make([]string, len(state.Selection))
	copy(selection, state.Selection)

	return &StateView{
		Cards:          BuildCardViews(state),
		Selection:      selection,
		InputLocked:    state.InputLocked,
		MoveCount:      state.MoveCount,
		ElapsedSeconds: state.ElapsedSeconds,
		Difficulty:     state.Difficulty,
		Status:         state.Status,
		ConfigName:     state.ConfigName,
		Message:        state.Message,
		Version:        state.Version,
		PairsMatched:   state.PairsMatched,
		TotalPairs:     state.TotalPairs,
		LastTurn:       state.LastTurn,
	}
}
