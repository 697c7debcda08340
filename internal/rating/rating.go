package rating

import (
	"math"

	"github.com/mauv0809/rallyrank/internal/apperr"
)

const (
	DefaultKFactor = 32
	DefaultElo     = 1500
)

// System applies the ELO update law. It holds no mutable state and is safe for concurrent use.
type System struct {
	KFactor    int
	DefaultElo int
}

// New creates a rating System. Non-positive values fall back to the package defaults.
func New(kFactor, defaultElo int) System {
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	if defaultElo <= 0 {
		defaultElo = DefaultElo
	}
	return System{KFactor: kFactor, DefaultElo: defaultElo}
}

// ExpectedOutcome returns the probability that a player rated a beats one rated b.
func ExpectedOutcome(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// UpdateRatings returns the new ratings of the winner and the loser of a single game.
func (s System) UpdateRatings(winner, loser int) (int, int) {
	k := float64(s.KFactor)
	w, l := float64(winner), float64(loser)
	winnerNew := math.Round(w + k*(1-ExpectedOutcome(w, l)))
	loserNew := math.Round(l + k*(0-ExpectedOutcome(l, w)))
	return int(winnerNew), int(loserNew)
}

// ProcessTeamResult rates a team result by updating the two team averages and adding each
// team's delta to every member, so rating gaps inside a team are preserved.
// Players missing from ratings start at DefaultElo. Players not on either team are copied through.
func (s System) ProcessTeamResult(ratings map[string]int, winnerIDs, loserIDs []string) (map[string]int, error) {
	if len(winnerIDs) == 0 || len(loserIDs) == 0 {
		return nil, apperr.Validationf("both teams need at least one player (winners=%d, losers=%d)", len(winnerIDs), len(loserIDs))
	}
	seen := make(map[string]bool, len(winnerIDs)+len(loserIDs))
	for _, id := range append(append([]string{}, winnerIDs...), loserIDs...) {
		if seen[id] {
			return nil, apperr.Validationf("player %s appears more than once in the result", id)
		}
		seen[id] = true
	}

	winnerAvg := s.teamAverage(ratings, winnerIDs)
	loserAvg := s.teamAverage(ratings, loserIDs)
	winnerNew, loserNew := s.UpdateRatings(winnerAvg, loserAvg)
	winnerDelta := winnerNew - winnerAvg
	loserDelta := loserNew - loserAvg

	updated := make(map[string]int, len(ratings)+len(seen))
	for id, r := range ratings {
		updated[id] = r
	}
	for _, id := range winnerIDs {
		updated[id] = s.ratingOf(ratings, id) + winnerDelta
	}
	for _, id := range loserIDs {
		updated[id] = s.ratingOf(ratings, id) + loserDelta
	}
	return updated, nil
}

func (s System) ratingOf(ratings map[string]int, id string) int {
	if r, ok := ratings[id]; ok {
		return r
	}
	return s.DefaultElo
}

// teamAverage is rounded to the nearest integer so that both teams are rated on the
// same integer scale as individual players.
func (s System) teamAverage(ratings map[string]int, ids []string) int {
	total := 0
	for _, id := range ids {
		total += s.ratingOf(ratings, id)
	}
	return int(math.Round(float64(total) / float64(len(ids))))
}
