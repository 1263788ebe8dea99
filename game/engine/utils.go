package engine

// CountMatchedPairs counts the pairs already found on a board
func CountMatchedPairs(board []Card) int {
	matched := 0
	for _, card := range board {
		if card.Matched {
			matched++
		}
	}
	return matched / 2
}

// IsBoardComplete reports whether a non-empty board has every card matched
func IsBoardComplete(board []Card) bool {
	if len(board) == 0 {
		return false
	}
	for _, card := range board {
		if !card.Matched {
			return false
		}
	}
	return true
}

// CountSymbols returns how many times each symbol appears on a board
func CountSymbols(board []Card) map[string]int {
	counts := make(map[string]int)
	for _, card := range board {
		counts[card.Symbol]++
	}
	return counts
}

func isFaceUp(state *GameState, id string) bool {
	for _, selected := range state.Selection {
		if selected == id {
			return true
		}
	}
	for _, card := range state.Board {
		if card.ID == id {
			return card.Matched
		}
	}
	return false
}

func cloneState(state *GameState) *GameState {
	clone := *state
	clone.Board = make([]Card, len(state.Board))
	copy(clone.Board, state.Board)
	clone.Selection = make([]string, len(state.Selection))
	copy(clone.Selection, state.Selection)
	if state.LastTurn != nil {
		turn := *state.LastTurn
		clone.LastTurn = &turn
	}
	return &clone
}
