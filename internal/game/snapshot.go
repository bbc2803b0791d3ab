package game

import (
	"time"

	"github.com/zjrosen/ciphergram/internal/puzzle"
)

// Snapshot is an immutable view of a session for presentation. The TUI and
// pubsub subscribers only ever see snapshots; the live entity stays behind
// the service mutex.
type Snapshot struct {
	GUID       string
	Difficulty puzzle.Difficulty

	CipherText  string
	DisplayText string

	// SourceText is the solution, revealed to the player only after a loss.
	SourceText string

	Frequency map[byte]int
	Guessed   map[byte]byte

	Selected    byte // 0 when nothing is staged
	Mistakes    int
	MaxMistakes int
	Remaining   int

	Won        bool
	Lost       bool
	FinalScore int

	Author  string
	QuoteID string

	StartedAt time.Time
	Elapsed   time.Duration
}

// snapshotOf captures the session's current state.
func snapshotOf(s *puzzle.Session) Snapshot {
	var selected byte
	if sel, ok := s.SelectedLetter(); ok {
		selected = sel
	}
	return Snapshot{
		GUID:        s.GUID(),
		Difficulty:  s.Difficulty(),
		CipherText:  s.CipherText(),
		DisplayText: s.DisplayText(),
		SourceText:  s.SourceText(),
		Frequency:   s.LetterFrequency(),
		Guessed:     s.GuessedLetters(),
		Selected:    selected,
		Mistakes:    s.Mistakes(),
		MaxMistakes: s.MaxMistakes(),
		Remaining:   s.RemainingTokens(),
		Won:         s.IsWon(),
		Lost:        s.IsLost(),
		FinalScore:  s.FinalScore(),
		Author:      s.Author(),
		QuoteID:     s.QuoteID(),
		StartedAt:   s.StartedAt(),
		Elapsed:     s.Elapsed(),
	}
}

// IsOver reports whether the snapshot captures a finished game.
func (s Snapshot) IsOver() bool {
	return s.Won || s.Lost
}

// HasSelection reports whether a cipher letter is staged for the next guess.
func (s Snapshot) HasSelection() bool {
	return s.Selected != 0
}
