package bracket

import (
	"fmt"

	"github.com/mauv0809/rallyrank/internal/apperr"
)

// MatchID formats the id of the match at (round, matchNumber).
func MatchID(round, matchNumber int) string {
	return fmt.Sprintf("R%dM%d", round, matchNumber)
}

func parseMatchID(id string) (round, matchNumber int, ok bool) {
	var rest string
	n, _ := fmt.Sscanf(id+"|", "R%dM%d%s", &round, &matchNumber, &rest)
	return round, matchNumber, n == 3 && rest == "|"
}

// nextMatchNumber is the round r+1 slot a 1-based round r match feeds into.
func nextMatchNumber(matchNumber int) int {
	return (matchNumber + 1) / 2
}

// roundOffset is the index of the first match of round in the arena.
func roundOffset(size, round int) int {
	return size - size>>(round-1)
}

func matchesInRound(size, round int) int {
	return size >> round
}

func (b *Bracket) index(round, matchNumber int) (int, bool) {
	if round < 1 || round > b.Rounds || matchNumber < 1 || matchNumber > matchesInRound(b.Size, round) {
		return 0, false
	}
	return roundOffset(b.Size, round) + matchNumber - 1, true
}

// Match returns the match at (round, matchNumber).
func (b *Bracket) Match(round, matchNumber int) (*Match, bool) {
	i, ok := b.index(round, matchNumber)
	if !ok || i >= len(b.Matches) {
		return nil, false
	}
	return &b.Matches[i], true
}

// MatchByID looks up a match by its "R{round}M{number}" id.
func (b *Bracket) MatchByID(id string) (*Match, bool) {
	round, n, ok := parseMatchID(id)
	if !ok {
		return nil, false
	}
	m, ok := b.Match(round, n)
	if !ok || m.ID != id {
		return nil, false
	}
	return m, true
}

// Final returns the last match of the bracket.
func (b *Bracket) Final() *Match {
	m, _ := b.Match(b.Rounds, 1)
	return m
}

// Complete reports whether the final has been decided.
func (b *Bracket) Complete() bool {
	f := b.Final()
	return f != nil && f.WinnerID != ""
}

// Champion returns the winner of the final, if decided.
func (b *Bracket) Champion() (Entrant, bool) {
	f := b.Final()
	if f == nil || f.WinnerID == "" {
		return Entrant{}, false
	}
	e, _ := f.entrant(f.WinnerID)
	return e, true
}

// RoundName returns the display name of round, e.g. "Semifinals".
func (b *Bracket) RoundName(round int) string {
	if round < 1 || round > len(b.RoundNames) {
		return fmt.Sprintf("Round %d", round)
	}
	return b.RoundNames[round-1]
}

func (m *Match) entrant(id string) (Entrant, bool) {
	switch {
	case m.Player1 != nil && m.Player1.ID == id:
		return *m.Player1, true
	case m.Player2 != nil && m.Player2.ID == id:
		return *m.Player2, true
	}
	return Entrant{}, false
}

// Advance records winnerID as the winner of matchID and moves them into their next match:
// odd match numbers fill player1 of the next match, even ones fill player2.
// expectedVersion must equal the bracket's current version; the version is bumped on success.
func (b *Bracket) Advance(matchID, winnerID string, expectedVersion int) error {
	if expectedVersion != b.Version {
		return fmt.Errorf("bracket %s is at version %d, not %d: %w", b.ID, b.Version, expectedVersion, apperr.ErrStaleVersion)
	}
	m, ok := b.MatchByID(matchID)
	if !ok {
		return fmt.Errorf("match %s in bracket %s: %w", matchID, b.ID, apperr.ErrNotFound)
	}
	if m.WinnerID != "" {
		return apperr.Validationf("match %s already has a winner", matchID)
	}
	if m.Player1 == nil || m.Player2 == nil {
		return apperr.Validationf("match %s is still waiting for its players", matchID)
	}
	winner, ok := m.entrant(winnerID)
	if !ok {
		return &apperr.InvalidWinnerError{MatchID: matchID, WinnerID: winnerID}
	}

	m.WinnerID = winnerID
	if m.NextMatchID != "" {
		next, ok := b.MatchByID(m.NextMatchID)
		if !ok {
			return fmt.Errorf("next match %s of %s: %w", m.NextMatchID, matchID, apperr.ErrNotFound)
		}
		slot := &next.Player2
		if m.MatchNumber%2 == 1 {
			slot = &next.Player1
		}
		*slot = &winner
	}
	b.Version++
	return nil
}
