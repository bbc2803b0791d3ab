// Package game orchestrates cryptogram sessions: drawing quotes, applying
// player actions to the domain entity, scoring finished games, and fanning
// state changes out to persistence and subscribers.
package game

import (
	"context"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/ciphergram/internal/log"
	"github.com/zjrosen/ciphergram/internal/pubsub"
	"github.com/zjrosen/ciphergram/internal/puzzle"
	"github.com/zjrosen/ciphergram/internal/quotes"
)

// Service coordinates a single active game session. All methods are safe for
// concurrent use; operations on the active session are serialized through a
// mutex. Saves run in the background and never block or fail a player action.
type Service struct {
	mu      sync.Mutex
	current *puzzle.Session

	repo    puzzle.GameRepository
	quotes  quotes.Provider
	rng     *rand.Rand
	broker  *pubsub.Broker[Snapshot]
	tracer  trace.Tracer
	penalty int

	// saves tracks in-flight background saves so Wait can drain them.
	saves sync.WaitGroup
}

// Options configures a Service.
type Options struct {
	Repo   puzzle.GameRepository
	Quotes quotes.Provider
	RNG    *rand.Rand
	Broker *pubsub.Broker[Snapshot]
	Tracer trace.Tracer

	// MistakePenalty is the score deduction per mistake token spent.
	MistakePenalty int
}

// NewService creates a game service.
func NewService(opts Options) *Service {
	return &Service{
		repo:    opts.Repo,
		quotes:  opts.Quotes,
		rng:     opts.RNG,
		broker:  opts.Broker,
		tracer:  opts.Tracer,
		penalty: opts.MistakePenalty,
	}
}

// NewGame starts a fresh game at the given difficulty. A quote is drawn from
// the provider; when the draw fails the builtin fallback quote is used so a
// game always starts.
func (s *Service) NewGame(ctx context.Context, difficulty puzzle.Difficulty) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "game.new",
		trace.WithAttributes(attribute.String("difficulty", string(difficulty))))
	defer span.End()

	quote, err := s.quotes.Random(ctx)
	if err != nil {
		log.ErrorErr(log.CatGame, "Quote draw failed, using fallback", err)
		quote = quotes.Fallback()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := puzzle.NewSession(uuid.NewString(), difficulty, quote.Text, s.rng)
	session.SetAuthor(quote.Author)
	session.SetQuoteID(quote.ID)
	s.current = session

	log.Info(log.CatGame, "New game started",
		"guid", session.GUID(),
		"difficulty", string(difficulty),
		"quote_id", quote.ID,
		"letters", len(session.LetterFrequency()))

	s.persistLocked(session)
	snap := snapshotOf(session)
	s.publish(pubsub.CreatedEvent, snap)
	return snap, nil
}

// Resume loads the most recently played unfinished game.
// Returns puzzle.NoRecentGameError when there is nothing to resume.
func (s *Service) Resume(ctx context.Context) (Snapshot, error) {
	_, span := s.tracer.Start(ctx, "game.resume")
	defer span.End()

	session, err := s.repo.FindMostRecent()
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session

	log.Info(log.CatGame, "Resumed game",
		"guid", session.GUID(),
		"mistakes", session.Mistakes())

	snap := snapshotOf(session)
	s.publish(pubsub.UpdatedEvent, snap)
	return snap, nil
}

// Current returns a snapshot of the active session, or false when no game has
// been started.
func (s *Service) Current() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return snapshotOf(s.current), true
}

// SelectLetter stages a cipher letter for the next guess.
// Selection changes are not persisted on their own; they ride along with the
// next guess or hint.
func (s *Service) SelectLetter(ctx context.Context, cipherLetter byte) Snapshot {
	_, span := s.tracer.Start(ctx, "game.select",
		trace.WithAttributes(attribute.String("letter", string(cipherLetter))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Snapshot{}
	}
	s.current.SelectLetter(cipherLetter)
	return snapshotOf(s.current)
}

// ClearSelection unstages any selected cipher letter.
func (s *Service) ClearSelection() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Snapshot{}
	}
	s.current.ClearSelection()
	return snapshotOf(s.current)
}

// SubmitGuess resolves the staged cipher letter against a plaintext guess.
// Returns the post-guess snapshot and whether the guess was correct.
func (s *Service) SubmitGuess(ctx context.Context, plainLetter byte) (Snapshot, bool) {
	_, span := s.tracer.Start(ctx, "game.guess",
		trace.WithAttributes(attribute.String("letter", string(plainLetter))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Snapshot{}, false
	}

	// No-op guesses (no staged letter, game already over) change nothing
	// and are not persisted or published.
	if s.current.IsOver() {
		return snapshotOf(s.current), false
	}
	if _, ok := s.current.SelectedLetter(); !ok {
		return snapshotOf(s.current), false
	}

	correct := s.current.SubmitGuess(plainLetter)
	span.SetAttributes(attribute.Bool("correct", correct))
	s.finishIfOver()
	s.persistLocked(s.current)

	snap := snapshotOf(s.current)
	s.publishOutcome(snap)
	return snap, correct
}

// RequestHint reveals a random unsolved letter at the cost of one mistake
// token. Returns false when the hint could not be granted.
func (s *Service) RequestHint(ctx context.Context) (Snapshot, bool) {
	_, span := s.tracer.Start(ctx, "game.hint")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Snapshot{}, false
	}

	granted := s.current.RequestHint(s.rng)
	if !granted {
		return snapshotOf(s.current), false
	}

	log.Debug(log.CatGame, "Hint granted",
		"guid", s.current.GUID(),
		"remaining", s.current.RemainingTokens())

	s.finishIfOver()
	s.persistLocked(s.current)

	snap := snapshotOf(s.current)
	s.publishOutcome(snap)
	return snap, true
}

// History lists past games matching the filter, newest first.
func (s *Service) History(filter puzzle.ListFilter) ([]Snapshot, error) {
	sessions, err := s.repo.ListWithFilter(filter)
	if err != nil {
		return nil, err
	}
	snaps := make([]Snapshot, len(sessions))
	for i, session := range sessions {
		snaps[i] = snapshotOf(session)
	}
	return snaps, nil
}

// Stats aggregates the record across all finished games.
func (s *Service) Stats() (puzzle.StatsSummary, error) {
	return s.repo.Stats()
}

// Wait blocks until all in-flight background saves have completed.
// Call before shutdown so the last game state reaches disk.
func (s *Service) Wait() {
	s.saves.Wait()
}

// finishIfOver stamps the final score the first time the session turns
// terminal. Called with the mutex held.
func (s *Service) finishIfOver() {
	session := s.current
	if !session.IsOver() || session.FinalScore() != 0 {
		return
	}
	if session.IsWon() {
		session.SetFinalScore(session.Score(s.penalty))
		log.Info(log.CatGame, "Game won",
			"guid", session.GUID(),
			"score", session.FinalScore(),
			"mistakes", session.Mistakes())
		return
	}
	log.Info(log.CatGame, "Game lost",
		"guid", session.GUID(),
		"mistakes", session.Mistakes())
}

// persistLocked saves the session in the background. The save goroutine
// re-acquires the service mutex, so it serializes with player actions without
// delaying them. Failures are logged and otherwise ignored; gameplay never
// depends on the database.
func (s *Service) persistLocked(session *puzzle.Session) {
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.repo.Save(session); err != nil {
			log.ErrorErr(log.CatDB, "Failed to save game", err, "guid", session.GUID())
		}
	}()
}

// publishOutcome publishes the terminal event for finished games and a plain
// update otherwise.
func (s *Service) publishOutcome(snap Snapshot) {
	switch {
	case snap.Won:
		s.publish(pubsub.WonEvent, snap)
	case snap.Lost:
		s.publish(pubsub.LostEvent, snap)
	default:
		s.publish(pubsub.UpdatedEvent, snap)
	}
}

func (s *Service) publish(eventType pubsub.EventType, snap Snapshot) {
	if s.broker != nil {
		s.broker.Publish(eventType, snap)
	}
}
