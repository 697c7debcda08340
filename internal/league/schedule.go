package league

import (
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/samber/lo"
)

// Bye pads odd-sized player lists. Pairings against it are dropped.
const Bye = "BYE"

// MinPlayers is the smallest league that can be scheduled.
const MinPlayers = 3

// Pairing is a single game between two players.
type Pairing struct {
	Home string `json:"home" msgpack:"home"`
	Away string `json:"away" msgpack:"away"`
}

// Round is one set of games played in the same week.
type Round struct {
	Number   int       `json:"number" msgpack:"number"`
	Pairings []Pairing `json:"pairings" msgpack:"pairings"`
}

// RoundRobin schedules every pair of players exactly once using the circle method:
// the first player stays fixed and the others rotate one position per round.
// Odd player counts are padded with Bye, so some rounds have one game fewer.
func RoundRobin(playerIDs []string) ([]Round, error) {
	if err := validate(playerIDs); err != nil {
		return nil, err
	}

	ring := append([]string(nil), playerIDs...)
	if len(ring)%2 == 1 {
		ring = append(ring, Bye)
	}
	n := len(ring)

	rounds := make([]Round, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := Round{Number: r + 1, Pairings: make([]Pairing, 0, n/2)}
		for i := 0; i < n/2; i++ {
			home, away := ring[i], ring[n-1-i]
			if home == Bye || away == Bye {
				continue
			}
			round.Pairings = append(round.Pairings, Pairing{Home: home, Away: away})
		}
		rounds = append(rounds, round)
		rotate(ring)
	}
	return rounds, nil
}

// rotate moves every entry but the first one step clockwise.
func rotate(ring []string) {
	last := ring[len(ring)-1]
	copy(ring[2:], ring[1:len(ring)-1])
	ring[1] = last
}

// BalancedSchedule stretches the round robin over weeks, cycling back to the first
// round once every pairing has been played.
func BalancedSchedule(playerIDs []string, weeks int) ([]Round, error) {
	if weeks < 1 {
		return nil, apperr.Validationf("a league needs at least 1 week, got %d", weeks)
	}
	base, err := RoundRobin(playerIDs)
	if err != nil {
		return nil, err
	}
	schedule := make([]Round, weeks)
	for w := range schedule {
		src := base[w%len(base)]
		schedule[w] = Round{Number: w + 1, Pairings: append([]Pairing(nil), src.Pairings...)}
	}
	return schedule, nil
}

func validate(playerIDs []string) error {
	if len(playerIDs) < MinPlayers {
		return &apperr.InsufficientPlayersError{Need: MinPlayers, Got: len(playerIDs)}
	}
	if lo.Contains(playerIDs, "") || lo.Contains(playerIDs, Bye) {
		return apperr.Validationf("player ids must be non-empty and not %q", Bye)
	}
	if dups := lo.FindDuplicates(playerIDs); len(dups) > 0 {
		return apperr.Validationf("player %s is listed more than once", dups[0])
	}
	return nil
}
