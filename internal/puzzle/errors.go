package puzzle

import "fmt"

// GameNotFoundError indicates that no game matches the requested GUID.
type GameNotFoundError struct {
	GUID string
}

func (e *GameNotFoundError) Error() string {
	return fmt.Sprintf("game not found: %s", e.GUID)
}

// NoRecentGameError indicates that there is no in-progress game to resume.
// This is a normal condition, not a failure.
type NoRecentGameError struct{}

func (e *NoRecentGameError) Error() string {
	return "no in-progress game to resume"
}
