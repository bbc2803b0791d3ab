package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zjrosen/ciphergram/internal/puzzle"
)

func TestNewSession_Defaults(t *testing.T) {
	session := NewSession(t)

	require.Equal(t, "test-guid", session.GUID())
	require.Equal(t, puzzle.DifficultyMedium, session.Difficulty())
	require.Equal(t, "TIME FLIES", session.SourceText())
	require.False(t, session.IsOver())
}

func TestNewSession_Options(t *testing.T) {
	session := NewSession(t,
		WithGUID("custom"),
		WithDifficulty(puzzle.DifficultyHard),
		WithText("HELLO"),
		WithAuthor("Tester"),
		WithQuoteID("q-1"),
	)

	require.Equal(t, "custom", session.GUID())
	require.Equal(t, puzzle.DifficultyHard, session.Difficulty())
	require.Equal(t, "HELLO", session.SourceText())
	require.Equal(t, "Tester", session.Author())
	require.Equal(t, "q-1", session.QuoteID())
}

func TestNewSession_SeedIsDeterministic(t *testing.T) {
	a := NewSession(t, WithSeed(42))
	b := NewSession(t, WithSeed(42))

	require.Equal(t, a.CipherText(), b.CipherText())
}

func TestWonSession(t *testing.T) {
	session := WonSession(t)

	require.True(t, session.IsWon())
	require.False(t, session.IsLost())
	require.Zero(t, session.Mistakes())
}

func TestLostSession(t *testing.T) {
	session := LostSession(t)

	require.True(t, session.IsLost())
	require.False(t, session.IsWon())
	require.Equal(t, session.MaxMistakes(), session.Mistakes())
}
