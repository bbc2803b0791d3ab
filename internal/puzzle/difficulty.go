package puzzle

import "strings"

// Difficulty controls the mistake budget and the base score of a game.
type Difficulty string

const (
	// DifficultyEasy allows 8 mistakes and scores from a 100 point base.
	DifficultyEasy Difficulty = "easy"

	// DifficultyMedium allows 5 mistakes and scores from a 200 point base.
	DifficultyMedium Difficulty = "medium"

	// DifficultyHard allows 3 mistakes and scores from a 300 point base.
	DifficultyHard Difficulty = "hard"
)

// String returns the string representation of the difficulty.
func (d Difficulty) String() string {
	return string(d)
}

// IsValid returns true if the difficulty is a recognized value.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// MaxMistakes returns the mistake budget for the difficulty.
// Unrecognized values fall back to the medium budget.
func (d Difficulty) MaxMistakes() int {
	switch d {
	case DifficultyEasy:
		return 8
	case DifficultyHard:
		return 3
	default:
		return 5
	}
}

// BaseScore returns the scoring base for the difficulty.
// Unrecognized values fall back to the medium base.
func (d Difficulty) BaseScore() int {
	switch d {
	case DifficultyEasy:
		return 100
	case DifficultyHard:
		return 300
	default:
		return 200
	}
}

// ParseDifficulty parses a user-supplied difficulty string.
// Unrecognized input maps to medium.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return DifficultyMedium
	}
	return d
}
