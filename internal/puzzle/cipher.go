// Package puzzle provides the pure domain layer for cryptogram games with no
// infrastructure dependencies.
//
// This package follows Domain-Driven Design (DDD) principles:
//   - Contains only pure Go code with standard library imports
//   - Defines the Session entity with encapsulated state and behavior
//   - Defines the GameRepository interface for persistence abstraction
//   - Provides domain-specific error types
//
// Randomness (key generation, hint selection) is injected as a *rand.Rand so
// callers can seed it for reproducible puzzles.
package puzzle

import (
	"fmt"
	"math/rand"
)

// alphabetSize is the number of letters in the substitution alphabet.
const alphabetSize = 26

// Cipher is a substitution key over A-Z: two inverse permutations of the
// alphabet. The zero value is not a valid key; use NewCipher or
// ReconstituteCipher.
type Cipher struct {
	encode [alphabetSize]byte
	decode [alphabetSize]byte
}

// NewCipher generates a uniformly random substitution key from rng.
// A letter may map to itself; derangements are not required.
func NewCipher(rng *rand.Rand) Cipher {
	var c Cipher
	for plain, idx := range rng.Perm(alphabetSize) {
		c.encode[plain] = byte('A' + idx)
		c.decode[idx] = byte('A' + plain)
	}
	return c
}

// ReconstituteCipher rebuilds a key from its 26-letter encode string,
// typically when hydrating from the database. The string must be a
// permutation of A-Z.
func ReconstituteCipher(encoded string) (Cipher, error) {
	var c Cipher
	if len(encoded) != alphabetSize {
		return c, fmt.Errorf("cipher key must be %d letters, got %d", alphabetSize, len(encoded))
	}
	var seen [alphabetSize]bool
	for plain := 0; plain < alphabetSize; plain++ {
		b := encoded[plain]
		if !IsLetter(b) {
			return c, fmt.Errorf("cipher key contains non-letter %q", b)
		}
		idx := int(b - 'A')
		if seen[idx] {
			return c, fmt.Errorf("cipher key maps %q twice", b)
		}
		seen[idx] = true
		c.encode[plain] = b
		c.decode[idx] = byte('A' + plain)
	}
	return c, nil
}

// Encode maps a plaintext letter to its cipher letter.
// Non-letter bytes pass through unchanged.
func (c Cipher) Encode(b byte) byte {
	if !IsLetter(b) {
		return b
	}
	return c.encode[b-'A']
}

// Decode maps a cipher letter back to its plaintext letter.
// Non-letter bytes pass through unchanged.
func (c Cipher) Decode(b byte) byte {
	if !IsLetter(b) {
		return b
	}
	return c.decode[b-'A']
}

// String returns the 26-letter encode string: position i holds the cipher
// letter for plaintext 'A'+i. This is the serialized form stored in the
// database.
func (c Cipher) String() string {
	return string(c.encode[:])
}

// IsLetter reports whether b is an uppercase A-Z letter, the canonical form
// for all cipher and guess operations.
func IsLetter(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// upper folds a lowercase ASCII letter to uppercase, leaving other bytes
// untouched.
func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
