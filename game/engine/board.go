package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// ShuffleFunc permutes n elements through swap, with the contract of rand.Shuffle
type ShuffleFunc func(n int, swap func(i, j int))

// PairsFor returns the number of pairs a board of the given difficulty needs
func PairsFor(difficulty int) int {
	return difficulty * difficulty / 2
}

// ValidateDifficulty checks that a d x d board can be built from a catalog of the given size
func ValidateDifficulty(difficulty, catalogSize int) error {
	if difficulty <= 0 {
		return fmt.Errorf("%w: board size must be positive, got %d", ErrInvalidDifficulty, difficulty)
	}
	if (difficulty*difficulty)%2 != 0 {
		return fmt.Errorf("%w: %dx%d board has an odd number of cards", ErrInvalidDifficulty, difficulty, difficulty)
	}
	if pairs := PairsFor(difficulty); pairs > catalogSize {
		return fmt.Errorf("%w: %dx%d board needs %d symbols, catalog has %d",
			ErrInvalidDifficulty, difficulty, difficulty, pairs, catalogSize)
	}
	return nil
}

// SupportedDifficulties lists every board size a catalog of the given size can fill
func SupportedDifficulties(catalogSize int) []int {
	var sizes []int
	for d := 2; PairsFor(d) <= catalogSize; d += 2 {
		sizes = append(sizes, d)
	}
	return sizes
}

// GenerateBoard builds a shuffled board of difficulty*difficulty cards.
// The first difficulty²/2 catalog symbols are used, each exactly twice, and
// every card gets a fresh ID. A nil shuffle uses math/rand/v2.
func GenerateBoard(difficulty int, catalog []string, shuffle ShuffleFunc) ([]Card, error) {
	if err := ValidateDifficulty(difficulty, len(catalog)); err != nil {
		return nil, err
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	pairs := PairsFor(difficulty)
	board := make([]Card, 0, pairs*2)
	for i := 0; i < 2; i++ {
		for _, symbol := range catalog[:pairs] {
			board = append(board, Card{Symbol: symbol})
		}
	}

	shuffle(len(board), func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})

	for i := range board {
		board[i].ID = uuid.NewString()
	}

	return board, nil
}
