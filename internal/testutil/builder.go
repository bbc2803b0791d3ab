// Package testutil provides helpers for constructing game sessions in tests.
package testutil

import (
	"math/rand"
	"testing"

	"github.com/zjrosen/ciphergram/internal/puzzle"
)

// sessionConfig holds the parameters a session is built from.
type sessionConfig struct {
	guid       string
	difficulty puzzle.Difficulty
	text       string
	seed       int64
	author     string
	quoteID    string
}

// SessionOption configures a test session.
type SessionOption func(*sessionConfig)

// WithGUID sets the session GUID.
func WithGUID(guid string) SessionOption {
	return func(c *sessionConfig) { c.guid = guid }
}

// WithDifficulty sets the difficulty.
func WithDifficulty(d puzzle.Difficulty) SessionOption {
	return func(c *sessionConfig) { c.difficulty = d }
}

// WithText sets the solution text.
func WithText(text string) SessionOption {
	return func(c *sessionConfig) { c.text = text }
}

// WithSeed sets the cipher shuffle seed.
func WithSeed(seed int64) SessionOption {
	return func(c *sessionConfig) { c.seed = seed }
}

// WithAuthor sets the quote attribution.
func WithAuthor(author string) SessionOption {
	return func(c *sessionConfig) { c.author = author }
}

// WithQuoteID sets the quote identifier.
func WithQuoteID(id string) SessionOption {
	return func(c *sessionConfig) { c.quoteID = id }
}

// NewSession builds a fresh in-progress session with sensible defaults.
func NewSession(t *testing.T, opts ...SessionOption) *puzzle.Session {
	t.Helper()
	cfg := sessionConfig{
		guid:       "test-guid",
		difficulty: puzzle.DifficultyMedium,
		text:       "TIME FLIES",
		seed:       1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	session := puzzle.NewSession(cfg.guid, cfg.difficulty, cfg.text, rand.New(rand.NewSource(cfg.seed)))
	if cfg.author != "" {
		session.SetAuthor(cfg.author)
	}
	if cfg.quoteID != "" {
		session.SetQuoteID(cfg.quoteID)
	}
	return session
}
