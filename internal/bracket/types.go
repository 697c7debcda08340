package bracket

import (
	"time"
)

// Size is the only supported draw size.
const Size = 16

// SeedingOrder maps seed position i to a bracket position for a 16-player draw.
var SeedingOrder = [Size]int{0, 15, 7, 8, 3, 12, 4, 11, 2, 13, 5, 10, 6, 9, 1, 14}

// seededCount is how many of the highest rated players get a fixed position.
const seededCount = 4

// RoundNames are indexed by round - 1 for a 16-player draw.
var RoundNames = []string{"Round of 16", "Quarterfinals", "Semifinals", "Final"}

// Entrant is a player's entry in a bracket.
type Entrant struct {
	ID          string `json:"id" msgpack:"id"`
	DisplayName string `json:"displayName" msgpack:"display_name"`
	EloRating   int    `json:"eloRating" msgpack:"elo_rating"`
	// Seed is 1-4 for seeded entrants and 0 for everyone else.
	Seed int `json:"seed,omitempty" msgpack:"seed,omitempty"`
}

// Match is a single game in the draw. Player slots stay nil until the feeder match is decided.
type Match struct {
	ID          string   `json:"id" msgpack:"id"`
	Round       int      `json:"round" msgpack:"round"`
	MatchNumber int      `json:"matchNumber" msgpack:"match_number"`
	Player1     *Entrant `json:"player1,omitempty" msgpack:"player1,omitempty"`
	Player2     *Entrant `json:"player2,omitempty" msgpack:"player2,omitempty"`
	WinnerID    string   `json:"winnerId,omitempty" msgpack:"winner_id,omitempty"`
	NextMatchID string   `json:"nextMatchId,omitempty" msgpack:"next_match_id,omitempty"`
}

// Bracket is a single-elimination tournament. Matches are stored round by round,
// so the match for (round, matchNumber) sits at a fixed index.
type Bracket struct {
	ID         string    `json:"id" msgpack:"id"`
	Name       string    `json:"name" msgpack:"name"`
	Size       int       `json:"size" msgpack:"size"`
	Rounds     int       `json:"rounds" msgpack:"rounds"`
	RoundNames []string  `json:"roundNames" msgpack:"round_names"`
	Matches    []Match   `json:"matches" msgpack:"matches"`
	Version    int       `json:"version" msgpack:"version"`
	CreatedAt  time.Time `json:"createdAt" msgpack:"created_at"`
}
