package puzzle

import (
	"math/rand"
	"sort"
	"strings"
	"time"
)

// Placeholder is the glyph shown for cipher positions that have not been
// solved yet.
const Placeholder byte = '_'

// Session represents one cryptogram game, in progress or finished.
// All fields are unexported to enforce encapsulation; use the constructor
// and getter methods to access data. A Session is not safe for concurrent
// use: callers must serialize access per session (see game.Service).
type Session struct {
	id         int64
	guid       string
	difficulty Difficulty

	// Puzzle text. sourceText is the uppercase-normalized solution,
	// cipherText its encryption, display the partially revealed line.
	sourceText string
	cipherText string
	display    []byte

	cipher    Cipher
	guessed   map[byte]byte // cipher letter -> revealed plaintext letter
	frequency map[byte]int  // cipher letter -> occurrences in cipherText

	// selected is the cipher letter staged for the next guess, 0 when
	// nothing is staged.
	selected byte

	mistakes    int
	maxMistakes int
	won         bool
	lost        bool

	// finalScore is assigned once by the engine when the game ends.
	finalScore int

	// Quote attribution, carried for display and history.
	author  string
	quoteID string

	startedAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSession creates a new game for the given solution text. The text is
// normalized to uppercase; letters are encrypted through a fresh random key
// and non-letters pass through unchanged. The ID is left as zero; it will be
// assigned by the persistence layer.
func NewSession(guid string, difficulty Difficulty, sourceText string, rng *rand.Rand) *Session {
	now := time.Now()
	s := &Session{
		guid:        guid,
		difficulty:  difficulty,
		sourceText:  strings.ToUpper(sourceText),
		cipher:      NewCipher(rng),
		guessed:     make(map[byte]byte),
		frequency:   make(map[byte]int),
		maxMistakes: difficulty.MaxMistakes(),
		startedAt:   now,
		updatedAt:   now,
	}

	encrypted := make([]byte, len(s.sourceText))
	s.display = make([]byte, len(s.sourceText))
	for i := 0; i < len(s.sourceText); i++ {
		b := s.sourceText[i]
		if IsLetter(b) {
			c := s.cipher.Encode(b)
			encrypted[i] = c
			s.display[i] = Placeholder
			s.frequency[c]++
		} else {
			encrypted[i] = b
			s.display[i] = b
		}
	}
	s.cipherText = string(encrypted)
	return s
}

// ReconstituteSession creates a Session from existing data, typically when
// hydrating from the database. The letter frequency table is derived from the
// cipher text rather than stored.
func ReconstituteSession(
	id int64,
	guid string,
	difficulty Difficulty,
	sourceText, cipherText string,
	cipher Cipher,
	guessed map[byte]byte,
	selected byte,
	mistakes, maxMistakes int,
	won, lost bool,
	finalScore int,
	author, quoteID string,
	startedAt, updatedAt time.Time,
	deletedAt *time.Time,
) *Session {
	if guessed == nil {
		guessed = make(map[byte]byte)
	}
	s := &Session{
		id:          id,
		guid:        guid,
		difficulty:  difficulty,
		sourceText:  sourceText,
		cipherText:  cipherText,
		cipher:      cipher,
		guessed:     guessed,
		selected:    selected,
		mistakes:    mistakes,
		maxMistakes: maxMistakes,
		won:         won,
		lost:        lost,
		finalScore:  finalScore,
		author:      author,
		quoteID:     quoteID,
		startedAt:   startedAt,
		updatedAt:   updatedAt,
		deletedAt:   deletedAt,
	}
	s.frequency = make(map[byte]int)
	for i := 0; i < len(cipherText); i++ {
		if IsLetter(cipherText[i]) {
			s.frequency[cipherText[i]]++
		}
	}
	s.display = make([]byte, len(cipherText))
	s.reveal()
	return s
}

// SelectLetter stages a cipher letter for the next guess. Only letters that
// actually occur in the cipher text are selectable; the guessed map must stay
// a subset of them. Selecting a letter that is already solved clears the
// selection instead; solved letters cannot be re-selected. No mistake is
// charged and no win/loss check runs.
func (s *Session) SelectLetter(cipherLetter byte) {
	if s.won || s.lost {
		return
	}
	cipherLetter = upper(cipherLetter)
	if !IsLetter(cipherLetter) {
		return
	}
	if s.frequency[cipherLetter] == 0 {
		return
	}
	if _, solved := s.guessed[cipherLetter]; solved {
		s.selected = 0
		return
	}
	s.selected = cipherLetter
}

// ClearSelection unstages any selected cipher letter.
func (s *Session) ClearSelection() {
	s.selected = 0
}

// SubmitGuess resolves the staged cipher letter against the guessed plaintext
// letter. A correct guess reveals every occurrence of the cipher letter; a
// wrong guess spends one mistake token. With no staged letter the call is a
// no-op returning false. The selection is cleared either way.
func (s *Session) SubmitGuess(plainLetter byte) bool {
	if s.won || s.lost {
		return false
	}
	if s.selected == 0 {
		return false
	}

	plainLetter = upper(plainLetter)
	correct := IsLetter(plainLetter) && s.cipher.Decode(s.selected) == plainLetter
	if correct {
		s.guessed[s.selected] = plainLetter
		s.reveal()
		s.checkWin()
	} else {
		s.mistakes++
		s.checkLoss()
	}
	s.selected = 0
	s.updatedAt = time.Now()
	return correct
}

// RequestHint reveals one unsolved cipher letter chosen uniformly at random,
// spending one mistake token. Hints share the mistake budget with wrong
// guesses; there is no separate hint counter. Returns false when every cipher
// letter is already solved or the game is over, leaving the session
// unchanged.
//
// When the reveal completes the solution the session is marked won even if
// the same hint spends the last token; the loss check runs only for a
// non-winning reveal.
func (s *Session) RequestHint(rng *rand.Rand) bool {
	if s.won || s.lost {
		return false
	}
	unsolved := s.unsolvedLetters()
	if len(unsolved) == 0 {
		return false
	}

	letter := unsolved[rng.Intn(len(unsolved))]
	s.guessed[letter] = s.cipher.Decode(letter)
	s.reveal()
	s.mistakes++
	s.checkWin()
	if !s.won {
		s.checkLoss()
	}
	if _, solved := s.guessed[s.selected]; solved {
		s.selected = 0
	}
	s.updatedAt = time.Now()
	return true
}

// Score computes the final score from difficulty, mistakes, and elapsed time.
// Pure; callable at any time, typically once the game is over. The per-mistake
// penalty is configuration owned by the caller, not a constant of the domain.
//
// Time bonus bands: under 60s +50, under 180s +30, under 300s +10, over 600s
// -20. The 300-600s band (600s inclusive) yields no bonus.
func (s *Session) Score(penaltyPerMistake int) int {
	elapsed := int(s.updatedAt.Sub(s.startedAt).Seconds())
	var timeScore int
	switch {
	case elapsed < 60:
		timeScore = 50
	case elapsed < 180:
		timeScore = 30
	case elapsed < 300:
		timeScore = 10
	case elapsed > 600:
		timeScore = -20
	}

	total := s.difficulty.BaseScore() - s.mistakes*penaltyPerMistake + timeScore
	if total < 0 {
		total = 0
	}
	return total
}

// reveal recomputes the display line from the cipher text and guessed map.
func (s *Session) reveal() {
	for i := 0; i < len(s.cipherText); i++ {
		b := s.cipherText[i]
		switch {
		case !IsLetter(b):
			s.display[i] = b
		default:
			if plain, ok := s.guessed[b]; ok {
				s.display[i] = plain
			} else {
				s.display[i] = Placeholder
			}
		}
	}
}

// checkWin marks the session won when the guessed map covers every distinct
// cipher letter appearing in the cipher text. Coverage is checked key by key,
// not by map sizes, so a stray out-of-text entry could never fake a win.
func (s *Session) checkWin() {
	for c := range s.frequency {
		if _, ok := s.guessed[c]; !ok {
			return
		}
	}
	s.won = true
}

// checkLoss marks the session lost once the mistake budget is exhausted.
func (s *Session) checkLoss() {
	if s.mistakes >= s.maxMistakes {
		s.lost = true
	}
}

// unsolvedLetters returns the cipher letters present in the cipher text that
// are not yet solved, sorted so a seeded RNG picks deterministically.
func (s *Session) unsolvedLetters() []byte {
	letters := make([]byte, 0, len(s.frequency))
	for c := range s.frequency {
		if _, solved := s.guessed[c]; !solved {
			letters = append(letters, c)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}

// ID returns the database identifier for this session.
// Returns 0 for newly created sessions that haven't been persisted.
func (s *Session) ID() int64 {
	return s.id
}

// SetID sets the database identifier for this session.
// This is typically called by the persistence layer after inserting.
func (s *Session) SetID(id int64) {
	s.id = id
}

// GUID returns the globally unique identifier for this session.
func (s *Session) GUID() string {
	return s.guid
}

// Difficulty returns the difficulty the session was created with.
func (s *Session) Difficulty() Difficulty {
	return s.difficulty
}

// SourceText returns the uppercase-normalized solution text.
func (s *Session) SourceText() string {
	return s.sourceText
}

// CipherText returns the encrypted text shown to the player.
func (s *Session) CipherText() string {
	return s.cipherText
}

// DisplayText returns the partially revealed line: solved positions show
// their plaintext letter, unsolved letter positions the placeholder glyph,
// and non-letter positions their literal character.
func (s *Session) DisplayText() string {
	return string(s.display)
}

// Cipher returns the substitution key for this session.
func (s *Session) Cipher() Cipher {
	return s.cipher
}

// GuessedLetters returns a copy of the solved cipher-to-plaintext mapping.
func (s *Session) GuessedLetters() map[byte]byte {
	out := make(map[byte]byte, len(s.guessed))
	for k, v := range s.guessed {
		out[k] = v
	}
	return out
}

// IsSolved reports whether the given cipher letter has been revealed.
func (s *Session) IsSolved(cipherLetter byte) bool {
	_, ok := s.guessed[upper(cipherLetter)]
	return ok
}

// LetterFrequency returns a copy of the occurrence count per cipher letter.
func (s *Session) LetterFrequency() map[byte]int {
	out := make(map[byte]int, len(s.frequency))
	for k, v := range s.frequency {
		out[k] = v
	}
	return out
}

// SelectedLetter returns the staged cipher letter, or false when nothing is
// staged.
func (s *Session) SelectedLetter() (byte, bool) {
	return s.selected, s.selected != 0
}

// Mistakes returns the number of wrong guesses and hints taken so far.
func (s *Session) Mistakes() int {
	return s.mistakes
}

// MaxMistakes returns the mistake budget for this session.
func (s *Session) MaxMistakes() int {
	return s.maxMistakes
}

// RemainingTokens returns how many wrong guesses or hints the player has
// left. This is also the "remaining hints" figure shown to the player.
func (s *Session) RemainingTokens() int {
	remaining := s.maxMistakes - s.mistakes
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsWon reports whether every cipher letter has been solved.
func (s *Session) IsWon() bool {
	return s.won
}

// IsLost reports whether the mistake budget was exhausted before solving.
func (s *Session) IsLost() bool {
	return s.lost
}

// IsOver reports whether the session is terminal. Terminal sessions ignore
// all further guesses and hints.
func (s *Session) IsOver() bool {
	return s.won || s.lost
}

// FinalScore returns the score recorded when the game ended, 0 while in
// progress.
func (s *Session) FinalScore() int {
	return s.finalScore
}

// SetFinalScore records the score computed by the engine at game end.
func (s *Session) SetFinalScore(score int) {
	s.finalScore = score
}

// Author returns the attribution of the quote being solved.
func (s *Session) Author() string {
	return s.author
}

// SetAuthor sets the attribution of the quote being solved.
func (s *Session) SetAuthor(author string) {
	s.author = author
}

// QuoteID returns the identifier of the quote in its source pack.
func (s *Session) QuoteID() string {
	return s.quoteID
}

// SetQuoteID sets the identifier of the quote in its source pack.
func (s *Session) SetQuoteID(id string) {
	s.quoteID = id
}

// StartedAt returns when this session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// UpdatedAt returns when this session last changed.
func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

// Elapsed returns the play time between the first and the latest mutation.
func (s *Session) Elapsed() time.Duration {
	return s.updatedAt.Sub(s.startedAt)
}

// DeletedAt returns when this session was soft-deleted, or nil.
func (s *Session) DeletedAt() *time.Time {
	return s.deletedAt
}

// SoftDelete marks the session as deleted without removing it from storage.
func (s *Session) SoftDelete() {
	now := time.Now()
	s.deletedAt = &now
}
