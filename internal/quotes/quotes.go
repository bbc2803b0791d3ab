// Package quotes supplies the puzzle solutions: a builtin embedded pack,
// optional user YAML packs with live reload, and a no-repeat filter over the
// random draw.
package quotes

import (
	"context"
	"errors"
)

// Quote is one puzzle solution with its attribution.
type Quote struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Author string `json:"author" yaml:"author"`
}

// ErrNoQuotes indicates that the provider has nothing to serve.
var ErrNoQuotes = errors.New("no quotes available")

// Provider serves random puzzle solutions.
type Provider interface {
	// Random returns a randomly chosen quote.
	// Returns ErrNoQuotes when the pool is empty.
	Random(ctx context.Context) (Quote, error)
}

// Fallback is the hardcoded solution used when the provider fails. The game
// must start even with a broken quote pack; provider errors are logged, not
// surfaced.
func Fallback() Quote {
	return Quote{
		ID:     "fallback",
		Text:   "MANNERS MAKETH MAN",
		Author: "William Horman",
	}
}
