package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/ciphergram/internal/puzzle"
)

// gameColumns is the list of columns to select for game queries.
const gameColumns = `id, guid, difficulty, source_text, cipher_text, cipher_key,
	guessed, selected, mistakes, max_mistakes, won, lost, final_score,
	author, quote_id, started_at, updated_at, deleted_at`

// gameRepository implements puzzle.GameRepository using SQLite.
type gameRepository struct {
	db *sql.DB
}

// newGameRepository creates a new gameRepository instance.
func newGameRepository(db *sql.DB) *gameRepository {
	return &gameRepository{db: db}
}

// Ensure gameRepository implements puzzle.GameRepository.
var _ puzzle.GameRepository = (*gameRepository)(nil)

// scanGame scans a row into a GameModel.
func scanGame(scanner interface{ Scan(...any) error }) (*GameModel, error) {
	var model GameModel
	err := scanner.Scan(
		&model.ID, &model.GUID, &model.Difficulty, &model.SourceText,
		&model.CipherText, &model.CipherKey,
		&model.Guessed, &model.Selected, &model.Mistakes, &model.MaxMistakes,
		&model.Won, &model.Lost, &model.FinalScore,
		&model.Author, &model.QuoteID,
		&model.StartedAt, &model.UpdatedAt, &model.DeletedAt,
	)
	return &model, err
}

// Save persists a game to the database.
// For new games (ID == 0), inserts a new row and sets the session ID.
// For existing games (ID > 0), updates the existing row.
func (r *gameRepository) Save(session *puzzle.Session) error {
	model := toGameModel(session)

	if session.ID() == 0 {
		result, err := r.db.Exec(
			`INSERT INTO games (
				guid, difficulty, source_text, cipher_text, cipher_key,
				guessed, selected, mistakes, max_mistakes, won, lost, final_score,
				author, quote_id, started_at, updated_at, deleted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			model.GUID, model.Difficulty, model.SourceText, model.CipherText, model.CipherKey,
			model.Guessed, model.Selected, model.Mistakes, model.MaxMistakes,
			model.Won, model.Lost, model.FinalScore,
			model.Author, model.QuoteID, model.StartedAt, model.UpdatedAt, model.DeletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		session.SetID(id)
		return nil
	}

	_, err := r.db.Exec(
		`UPDATE games SET
			guessed = ?, selected = ?, mistakes = ?, won = ?, lost = ?, final_score = ?,
			author = ?, quote_id = ?, updated_at = ?, deleted_at = ?
		WHERE id = ?`,
		model.Guessed, model.Selected, model.Mistakes, model.Won, model.Lost, model.FinalScore,
		model.Author, model.QuoteID, model.UpdatedAt, model.DeletedAt,
		model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return nil
}

// FindByGUID retrieves a game by its GUID.
// Returns GameNotFoundError if no matching game exists.
// Soft-deleted games are not returned.
func (r *gameRepository) FindByGUID(guid string) (*puzzle.Session, error) {
	row := r.db.QueryRow(
		`SELECT `+gameColumns+` FROM games WHERE guid = ? AND deleted_at IS NULL`,
		guid,
	)
	model, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &puzzle.GameNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game by guid: %w", err)
	}
	return model.toDomain()
}

// FindMostRecent retrieves the newest in-progress game, for resuming.
// Returns NoRecentGameError when every game is finished or deleted.
func (r *gameRepository) FindMostRecent() (*puzzle.Session, error) {
	row := r.db.QueryRow(
		`SELECT ` + gameColumns + ` FROM games
		WHERE won = 0 AND lost = 0 AND deleted_at IS NULL
		ORDER BY updated_at DESC, id DESC LIMIT 1`,
	)
	model, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &puzzle.NoRecentGameError{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find most recent game: %w", err)
	}
	return model.toDomain()
}

// ListWithFilter retrieves games matching the given filter criteria.
// Results are ordered by started_at descending (newest first).
func (r *gameRepository) ListWithFilter(filter puzzle.ListFilter) ([]*puzzle.Session, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	var args []any

	switch filter.State {
	case puzzle.GameStateInProgress:
		query += ` AND won = 0 AND lost = 0`
	case puzzle.GameStateWon:
		query += ` AND won = 1`
	case puzzle.GameStateLost:
		query += ` AND lost = 1`
	}

	if !filter.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	query += ` ORDER BY started_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*puzzle.Session
	for rows.Next() {
		model, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		session, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}

	return sessions, nil
}

// Stats aggregates the record across all finished, non-deleted games.
func (r *gameRepository) Stats() (puzzle.StatsSummary, error) {
	var summary puzzle.StatsSummary
	err := r.db.QueryRow(
		`SELECT
			COUNT(*),
			COALESCE(SUM(won), 0),
			COALESCE(SUM(lost), 0),
			COALESCE(MAX(final_score), 0),
			COALESCE(AVG(mistakes), 0),
			COALESCE(SUM(updated_at - started_at), 0)
		FROM games
		WHERE (won = 1 OR lost = 1) AND deleted_at IS NULL`,
	).Scan(
		&summary.Played, &summary.Won, &summary.Lost,
		&summary.BestScore, &summary.AvgMistakes, &summary.TotalPlaySec,
	)
	if err != nil {
		return puzzle.StatsSummary{}, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return summary, nil
}

// Delete performs a soft delete on a game by setting its deleted_at timestamp.
// Returns GameNotFoundError if no matching game exists.
func (r *gameRepository) Delete(guid string) error {
	now := time.Now().Unix()
	result, err := r.db.Exec(
		`UPDATE games SET deleted_at = ?, updated_at = ?
		 WHERE guid = ? AND deleted_at IS NULL`,
		now, now, guid,
	)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &puzzle.GameNotFoundError{GUID: guid}
	}
	return nil
}

// Close releases any resources held by the repository.
// This is a no-op because the connection is owned by the DB struct.
func (r *gameRepository) Close() error {
	return nil
}
