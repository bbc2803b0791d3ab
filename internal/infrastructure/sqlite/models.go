package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/ciphergram/internal/puzzle"
)

// GameModel represents the database row for the games table.
// Fields map directly to SQL columns with Unix timestamps for time values.
type GameModel struct {
	ID          int64
	GUID        string
	Difficulty  string
	SourceText  string
	CipherText  string
	CipherKey   string  // 26-letter substitution key
	Guessed     *string // nullable, JSON encoded
	Selected    *string // nullable, single letter
	Mistakes    int
	MaxMistakes int
	Won         bool
	Lost        bool
	FinalScore  int
	Author      *string // nullable
	QuoteID     *string // nullable

	StartedAt int64  // Unix timestamp
	UpdatedAt int64  // Unix timestamp
	DeletedAt *int64 // Unix timestamp, nullable
}

// toGameModel converts a domain Session entity to a database GameModel.
func toGameModel(s *puzzle.Session) *GameModel {
	m := &GameModel{
		ID:          s.ID(),
		GUID:        s.GUID(),
		Difficulty:  string(s.Difficulty()),
		SourceText:  s.SourceText(),
		CipherText:  s.CipherText(),
		CipherKey:   s.Cipher().String(),
		Mistakes:    s.Mistakes(),
		MaxMistakes: s.MaxMistakes(),
		Won:         s.IsWon(),
		Lost:        s.IsLost(),
		FinalScore:  s.FinalScore(),
		StartedAt:   s.StartedAt().Unix(),
		UpdatedAt:   s.UpdatedAt().Unix(),
	}
	if guessed := s.GuessedLetters(); len(guessed) > 0 {
		encoded := make(map[string]string, len(guessed))
		for c, p := range guessed {
			encoded[string(c)] = string(p)
		}
		guessedJSON, err := json.Marshal(encoded)
		if err == nil {
			v := string(guessedJSON)
			m.Guessed = &v
		}
	}
	if sel, ok := s.SelectedLetter(); ok {
		v := string(sel)
		m.Selected = &v
	}
	if s.Author() != "" {
		author := s.Author()
		m.Author = &author
	}
	if s.QuoteID() != "" {
		quoteID := s.QuoteID()
		m.QuoteID = &quoteID
	}
	if s.DeletedAt() != nil {
		deletedAt := s.DeletedAt().Unix()
		m.DeletedAt = &deletedAt
	}
	return m
}

// toDomain converts a database GameModel to a domain Session entity.
func (m *GameModel) toDomain() (*puzzle.Session, error) {
	cipher, err := puzzle.ReconstituteCipher(m.CipherKey)
	if err != nil {
		return nil, fmt.Errorf("invalid cipher key for game %s: %w", m.GUID, err)
	}

	guessed := make(map[byte]byte)
	if m.Guessed != nil {
		var encoded map[string]string
		if err := json.Unmarshal([]byte(*m.Guessed), &encoded); err != nil {
			return nil, fmt.Errorf("invalid guessed letters for game %s: %w", m.GUID, err)
		}
		for c, p := range encoded {
			if len(c) == 1 && len(p) == 1 {
				guessed[c[0]] = p[0]
			}
		}
	}

	var selected byte
	if m.Selected != nil && len(*m.Selected) == 1 {
		selected = (*m.Selected)[0]
	}

	var author, quoteID string
	if m.Author != nil {
		author = *m.Author
	}
	if m.QuoteID != nil {
		quoteID = *m.QuoteID
	}

	var deletedAt *time.Time
	if m.DeletedAt != nil {
		t := time.Unix(*m.DeletedAt, 0)
		deletedAt = &t
	}

	return puzzle.ReconstituteSession(
		m.ID,
		m.GUID,
		puzzle.Difficulty(m.Difficulty),
		m.SourceText,
		m.CipherText,
		cipher,
		guessed,
		selected,
		m.Mistakes,
		m.MaxMistakes,
		m.Won,
		m.Lost,
		m.FinalScore,
		author,
		quoteID,
		time.Unix(m.StartedAt, 0),
		time.Unix(m.UpdatedAt, 0),
		deletedAt,
	), nil
}
