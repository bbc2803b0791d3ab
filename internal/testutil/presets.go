package testutil

import (
	"testing"

	"github.com/zjrosen/ciphergram/internal/puzzle"
)

// WonSession builds a session and plays it through to a win.
func WonSession(t *testing.T, opts ...SessionOption) *puzzle.Session {
	t.Helper()
	session := NewSession(t, opts...)
	for cipherLetter := range session.LetterFrequency() {
		if session.IsSolved(cipherLetter) {
			continue
		}
		session.SelectLetter(cipherLetter)
		if !session.SubmitGuess(session.Cipher().Decode(cipherLetter)) {
			t.Fatalf("correct guess for %c rejected", cipherLetter)
		}
	}
	if !session.IsWon() {
		t.Fatal("session not won after solving every letter")
	}
	return session
}

// LostSession builds a session and burns its whole mistake budget.
func LostSession(t *testing.T, opts ...SessionOption) *puzzle.Session {
	t.Helper()
	session := NewSession(t, opts...)
	var cipherLetter byte
	for c := range session.LetterFrequency() {
		cipherLetter = c
		break
	}
	for !session.IsLost() {
		wrong := byte('A')
		if session.Cipher().Decode(cipherLetter) == wrong {
			wrong = 'B'
		}
		session.SelectLetter(cipherLetter)
		if session.SubmitGuess(wrong) {
			t.Fatalf("wrong guess for %c accepted", cipherLetter)
		}
	}
	return session
}
