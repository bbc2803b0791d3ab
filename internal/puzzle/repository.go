package puzzle

// GameState classifies a session for list filtering.
type GameState string

const (
	// GameStateInProgress matches sessions that are neither won nor lost.
	GameStateInProgress GameState = "in_progress"

	// GameStateWon matches solved sessions.
	GameStateWon GameState = "won"

	// GameStateLost matches sessions that ran out of mistake tokens.
	GameStateLost GameState = "lost"
)

// ListFilter provides filtering options for listing games.
type ListFilter struct {
	// State filters games by outcome. If empty, all states are included.
	State GameState

	// Limit restricts the number of games returned. If 0, no limit.
	Limit int

	// IncludeDeleted includes soft-deleted games in results.
	// By default, deleted games are excluded.
	IncludeDeleted bool
}

// StatsSummary aggregates the local game record.
type StatsSummary struct {
	Played       int
	Won          int
	Lost         int
	BestScore    int
	AvgMistakes  float64
	TotalPlaySec int64
}

// GameRepository defines the persistence interface for Session entities.
// Implementations may use SQLite, in-memory storage, or other backends.
// Saves are best-effort from the engine's point of view: a failed save is
// logged and never affects in-memory game state.
type GameRepository interface {
	// Save persists a session. For new sessions (ID == 0) this creates a
	// record and sets the ID; for existing sessions it updates the record.
	Save(session *Session) error

	// FindByGUID retrieves a session by its GUID.
	// Returns GameNotFoundError if no matching game exists.
	// Soft-deleted games are not returned.
	FindByGUID(guid string) (*Session, error)

	// FindMostRecent retrieves the newest in-progress session, for resuming.
	// Returns NoRecentGameError when nothing is resumable.
	FindMostRecent() (*Session, error)

	// ListWithFilter retrieves games matching the filter, newest first.
	ListWithFilter(filter ListFilter) ([]*Session, error)

	// Stats aggregates the record across all finished games.
	Stats() (StatsSummary, error)

	// Delete soft-deletes a game by GUID.
	// Returns GameNotFoundError if no matching game exists.
	Delete(guid string) error

	// Close releases any resources held by the repository.
	Close() error
}
