package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by stores and aggregates when the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStaleVersion is returned when a write was based on an outdated version of a record.
	ErrStaleVersion = errors.New("stale version")
)

// ValidationError reports input with the wrong shape, e.g. too few players for a league.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

// Validationf creates a new ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientPlayersError is a ValidationError raised when a bracket or league is created from too few players.
type InsufficientPlayersError struct {
	Need int
	Got  int
}

func (e *InsufficientPlayersError) Error() string {
	return fmt.Sprintf("insufficient players: need %d, got %d", e.Need, e.Got)
}

func (e *InsufficientPlayersError) Unwrap() error {
	return &ValidationError{Message: e.Error()}
}

// InsufficientCandidatesError is returned when no pool member satisfies the matching filters.
type InsufficientCandidatesError struct {
	PoolSize int
	Filter   string
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("insufficient candidates: none of %d pool members match %s", e.PoolSize, e.Filter)
}

// InvalidWinnerError is returned when a reported winner is not one of the match's players.
type InvalidWinnerError struct {
	MatchID  string
	WinnerID string
}

func (e *InvalidWinnerError) Error() string {
	return fmt.Sprintf("invalid winner: player %s is not part of match %s", e.WinnerID, e.MatchID)
}

// PersistenceError wraps a failure surfaced by the storage collaborator.
// PlayerIDs lists the records whose write did not go through, if known.
type PersistenceError struct {
	Op        string
	PlayerIDs []string
	Err       error
}

func (e *PersistenceError) Error() string {
	if len(e.PlayerIDs) > 0 {
		return fmt.Sprintf("persistence error during %s (players %s): %v", e.Op, strings.Join(e.PlayerIDs, ", "), e.Err)
	}
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
