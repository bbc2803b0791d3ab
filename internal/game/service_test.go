package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/ciphergram/internal/pubsub"
	"github.com/zjrosen/ciphergram/internal/puzzle"
	"github.com/zjrosen/ciphergram/internal/quotes"
)

// memRepo is an in-memory GameRepository for tests.
type memRepo struct {
	mu     sync.Mutex
	games  map[string]*puzzle.Session
	nextID int64
	fail   bool
	saves  int
}

func newMemRepo() *memRepo {
	return &memRepo{games: make(map[string]*puzzle.Session), nextID: 1}
}

func (r *memRepo) Save(session *puzzle.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	if session.ID() == 0 {
		session.SetID(r.nextID)
		r.nextID++
	}
	r.games[session.GUID()] = session
	r.saves++
	return nil
}

func (r *memRepo) FindByGUID(guid string) (*puzzle.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.games[guid]
	if !ok || session.DeletedAt() != nil {
		return nil, &puzzle.GameNotFoundError{GUID: guid}
	}
	return session, nil
}

func (r *memRepo) FindMostRecent() (*puzzle.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *puzzle.Session
	for _, session := range r.games {
		if session.IsOver() || session.DeletedAt() != nil {
			continue
		}
		if newest == nil || session.UpdatedAt().After(newest.UpdatedAt()) {
			newest = session
		}
	}
	if newest == nil {
		return nil, &puzzle.NoRecentGameError{}
	}
	return newest, nil
}

func (r *memRepo) ListWithFilter(filter puzzle.ListFilter) ([]*puzzle.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*puzzle.Session
	for _, session := range r.games {
		if session.DeletedAt() != nil && !filter.IncludeDeleted {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

func (r *memRepo) Stats() (puzzle.StatsSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var summary puzzle.StatsSummary
	for _, session := range r.games {
		if !session.IsOver() || session.DeletedAt() != nil {
			continue
		}
		summary.Played++
		if session.IsWon() {
			summary.Won++
		} else {
			summary.Lost++
		}
		if session.FinalScore() > summary.BestScore {
			summary.BestScore = session.FinalScore()
		}
	}
	return summary, nil
}

func (r *memRepo) Delete(guid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.games[guid]
	if !ok {
		return &puzzle.GameNotFoundError{GUID: guid}
	}
	session.SoftDelete()
	return nil
}

func (r *memRepo) Close() error { return nil }

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// fixedQuote always serves the same quote.
type fixedQuote struct {
	quote Quote
	err   error
}

type Quote = quotes.Quote

func (f *fixedQuote) Random(context.Context) (Quote, error) {
	if f.err != nil {
		return Quote{}, f.err
	}
	return f.quote, nil
}

func newTestService(t *testing.T, repo puzzle.GameRepository, provider quotes.Provider) (*Service, *pubsub.Broker[Snapshot]) {
	t.Helper()
	broker := pubsub.NewBroker[Snapshot]()
	t.Cleanup(broker.Close)
	return NewService(Options{
		Repo:           repo,
		Quotes:         provider,
		RNG:            rand.New(rand.NewSource(1)),
		Broker:         broker,
		Tracer:         noop.NewTracerProvider().Tracer("test"),
		MistakePenalty: 10,
	}), broker
}

func TestService_NewGame(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "HELLO WORLD", Author: "Someone"}})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyHard)
	require.NoError(t, err)
	require.NotEmpty(t, snap.GUID)
	require.Equal(t, puzzle.DifficultyHard, snap.Difficulty)
	require.Equal(t, 3, snap.MaxMistakes)
	require.Equal(t, "Someone", snap.Author)
	require.Equal(t, "q1", snap.QuoteID)
	require.Equal(t, "__LL_ ___L_", maskOf(snap))

	svc.Wait()
	saved, err := repo.FindByGUID(snap.GUID)
	require.NoError(t, err)
	require.Greater(t, saved.ID(), int64(0), "New game should be persisted in the background")
}

// maskOf rebuilds the expected display from guessed letters, as a sanity
// check that the snapshot display matches the cipher text shape.
func maskOf(snap Snapshot) string {
	out := make([]byte, len(snap.CipherText))
	for i := 0; i < len(snap.CipherText); i++ {
		b := snap.CipherText[i]
		if b < 'A' || b > 'Z' {
			out[i] = b
			continue
		}
		if plain, ok := snap.Guessed[b]; ok {
			out[i] = plain
		} else {
			out[i] = puzzle.Placeholder
		}
	}
	return string(out)
}

func TestService_NewGame_FallbackQuote(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{err: quotes.ErrNoQuotes})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyMedium)
	require.NoError(t, err, "A failed quote draw should not prevent a new game")
	require.Equal(t, quotes.Fallback().Text, snap.SourceText)
	require.Equal(t, quotes.Fallback().ID, snap.QuoteID)
}

func TestService_Resume(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "RESUME ME"}})

	started, err := svc.NewGame(context.Background(), puzzle.DifficultyEasy)
	require.NoError(t, err)
	svc.Wait()

	// A second service over the same repo picks the game back up
	svc2, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q2", Text: "OTHER"}})
	resumed, err := svc2.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, started.GUID, resumed.GUID)
	require.Equal(t, started.CipherText, resumed.CipherText)
}

func TestService_Resume_NothingToResume(t *testing.T) {
	svc, _ := newTestService(t, newMemRepo(), &fixedQuote{quote: Quote{ID: "q1", Text: "AB"}})

	_, err := svc.Resume(context.Background())
	var noRecent *puzzle.NoRecentGameError
	require.True(t, errors.As(err, &noRecent))
}

func TestService_GuessFlow(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "HELLO"}})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyMedium)
	require.NoError(t, err)

	// Find the cipher letter for H and guess it correctly
	var cipherH byte
	for c, plain := range invertCipher(snap) {
		if plain == 'H' {
			cipherH = c
		}
	}
	snap = svc.SelectLetter(context.Background(), cipherH)
	require.Equal(t, cipherH, snap.Selected)

	snap, correct := svc.SubmitGuess(context.Background(), 'H')
	require.True(t, correct)
	require.Equal(t, byte(0), snap.Selected, "Selection should clear after a guess")
	require.Equal(t, 0, snap.Mistakes)
	require.Equal(t, "H____", snap.DisplayText)

	// Wrong guess spends a token
	snap = svc.SelectLetter(context.Background(), firstUnsolved(snap))
	snap, correct = svc.SubmitGuess(context.Background(), 'Z')
	require.False(t, correct)
	require.Equal(t, 1, snap.Mistakes)
}

// invertCipher maps cipher letters back to their plaintext via the frequency
// table and the snapshot's source text.
func invertCipher(snap Snapshot) map[byte]byte {
	out := make(map[byte]byte)
	for i := 0; i < len(snap.CipherText); i++ {
		c := snap.CipherText[i]
		if c >= 'A' && c <= 'Z' {
			out[c] = snap.SourceText[i]
		}
	}
	return out
}

func firstUnsolved(snap Snapshot) byte {
	for i := 0; i < len(snap.CipherText); i++ {
		c := snap.CipherText[i]
		if c < 'A' || c > 'Z' {
			continue
		}
		if _, solved := snap.Guessed[c]; !solved {
			return c
		}
	}
	return 0
}

func TestService_GuessWithoutSelection(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "NOPE"}})

	_, err := svc.NewGame(context.Background(), puzzle.DifficultyMedium)
	require.NoError(t, err)
	svc.Wait()
	savesBefore := repo.saveCount()

	snap, correct := svc.SubmitGuess(context.Background(), 'A')
	require.False(t, correct)
	require.Equal(t, 0, snap.Mistakes, "Guess without staged letter should be a no-op")

	svc.Wait()
	require.Equal(t, savesBefore, repo.saveCount(), "No-op guesses should not be persisted")
}

func TestService_WinPublishesEventAndScores(t *testing.T) {
	repo := newMemRepo()
	svc, broker := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "AB"}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := broker.Subscribe(ctx)

	snap, err := svc.NewGame(ctx, puzzle.DifficultyMedium)
	require.NoError(t, err)

	inverse := invertCipher(snap)
	for cipherLetter, plain := range inverse {
		svc.SelectLetter(ctx, cipherLetter)
		snap, _ = svc.SubmitGuess(ctx, plain)
	}
	require.True(t, snap.Won)
	require.Equal(t, 250, snap.FinalScore, "medium base 200, no mistakes, fast finish bonus 50")

	// Drain events until the win shows up
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-events:
			if evt.Type == pubsub.WonEvent {
				require.True(t, evt.Payload.Won)
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for won event")
		}
	}
}

func TestService_HintFlow(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "HINTED"}})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyEasy)
	require.NoError(t, err)
	require.Equal(t, 8, snap.Remaining)

	snap, granted := svc.RequestHint(context.Background())
	require.True(t, granted)
	require.Equal(t, 1, snap.Mistakes, "Hint should spend a mistake token")
	require.Len(t, snap.Guessed, 1)
}

func TestService_HintOnFinishedGame(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "AB"}})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyMedium)
	require.NoError(t, err)
	for cipherLetter, plain := range invertCipher(snap) {
		svc.SelectLetter(context.Background(), cipherLetter)
		snap, _ = svc.SubmitGuess(context.Background(), plain)
	}
	require.True(t, snap.Won)

	_, granted := svc.RequestHint(context.Background())
	require.False(t, granted, "Finished games should ignore hints")
}

func TestService_SaveFailureDoesNotBreakGameplay(t *testing.T) {
	repo := newMemRepo()
	repo.fail = true
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "BROKEN DISK"}})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyMedium)
	require.NoError(t, err, "Persistence failures must not surface to the player")
	svc.Wait()

	snap, granted := svc.RequestHint(context.Background())
	require.True(t, granted)
	require.Equal(t, 1, snap.Mistakes)
}

func TestService_CurrentBeforeStart(t *testing.T) {
	svc, _ := newTestService(t, newMemRepo(), &fixedQuote{quote: Quote{ID: "q1", Text: "AB"}})

	_, ok := svc.Current()
	require.False(t, ok)
}

func TestService_Stats(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, &fixedQuote{quote: Quote{ID: "q1", Text: "AB"}})

	snap, err := svc.NewGame(context.Background(), puzzle.DifficultyMedium)
	require.NoError(t, err)
	for cipherLetter, plain := range invertCipher(snap) {
		svc.SelectLetter(context.Background(), cipherLetter)
		snap, _ = svc.SubmitGuess(context.Background(), plain)
	}
	require.True(t, snap.Won)
	svc.Wait()

	stats, err := svc.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Played)
	require.Equal(t, 1, stats.Won)
	require.Equal(t, snap.FinalScore, stats.BestScore)
}
