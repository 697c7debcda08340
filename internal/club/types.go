package club

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/rallyrank/internal/player"
)

// store handles all database operations for the club.
type store struct {
	db         *sql.DB
	mu         sync.RWMutex
	defaultElo int
	now        func() time.Time
}

// PoolFilter narrows GetPool. Empty fields match everything.
type PoolFilter struct {
	Sport  string
	City   string
	Gender player.Gender
}

// MatchResult is a finished game. Performances holds the optional 1-5 self-assessed
// performance rating of each participant.
type MatchResult struct {
	ID           string             `json:"id" msgpack:"id"`
	WinnerIDs    []string           `json:"winnerIds" msgpack:"winner_ids"`
	LoserIDs     []string           `json:"loserIds" msgpack:"loser_ids"`
	Performances map[string]float64 `json:"performances,omitempty" msgpack:"performances,omitempty"`
	PlayedAt     time.Time          `json:"playedAt" msgpack:"played_at"`
}

// PlayerIDs returns winners followed by losers.
func (r MatchResult) PlayerIDs() []string {
	ids := make([]string, 0, len(r.WinnerIDs)+len(r.LoserIDs))
	ids = append(ids, r.WinnerIDs...)
	return append(ids, r.LoserIDs...)
}

// RatingChange is one row of a player's rating history.
type RatingChange struct {
	PlayerID  string    `json:"playerId" msgpack:"player_id"`
	ResultID  string    `json:"resultId" msgpack:"result_id"`
	OldRating int       `json:"oldRating" msgpack:"old_rating"`
	NewRating int       `json:"newRating" msgpack:"new_rating"`
	At        time.Time `json:"at" msgpack:"at"`
}

// Delta is the rating movement of the change.
func (c RatingChange) Delta() int {
	return c.NewRating - c.OldRating
}

// RatingFunc computes new ratings from the current ones. It runs inside the
// store's transaction and must not call back into the store.
type RatingFunc func(current map[string]int) (map[string]int, error)

// Recorded is the outcome of RecordMatchResult. Duplicate is set when the result
// id had already been recorded; Changes then holds the original changes.
type Recorded struct {
	Changes   []RatingChange
	Duplicate bool
}
