package playtomic

import (
	"time"

	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/player"
)

// Sport is the sport id imported players are registered under.
const Sport = "padel"

// ResultIDPrefix namespaces result ids derived from Playtomic match ids, so re-importing
// a match is recognised as a duplicate.
const ResultIDPrefix = "playtomic-"

// Decided reports whether the match was played and both sides confirmed the result.
func (m PadelMatch) Decided() bool {
	return m.GameStatus == GameStatusPlayed && m.ResultsStatus == ResultsStatusConfirmed
}

// WinningTeam returns the team that won more sets, falling back to the team Playtomic
// marks as WON when the set count is level.
func (m PadelMatch) WinningTeam() (winner, loser Team, ok bool) {
	if len(m.Teams) != 2 {
		return Team{}, Team{}, false
	}
	a, b := m.Teams[0], m.Teams[1]
	var setsA, setsB int
	for _, set := range m.Results {
		switch sa, sb := set.Scores[a.ID], set.Scores[b.ID]; {
		case sa > sb:
			setsA++
		case sb > sa:
			setsB++
		}
	}
	switch {
	case setsA > setsB:
		return a, b, true
	case setsB > setsA:
		return b, a, true
	case a.TeamResult == TeamResultWon && b.TeamResult != TeamResultWon:
		return a, b, true
	case b.TeamResult == TeamResultWon && a.TeamResult != TeamResultWon:
		return b, a, true
	}
	return Team{}, Team{}, false
}

// ToResult converts a decided match into a club result. Matches that are not decided,
// or where a side has no players, are skipped.
func ToResult(m PadelMatch) (club.MatchResult, bool) {
	if !m.Decided() {
		return club.MatchResult{}, false
	}
	winner, loser, ok := m.WinningTeam()
	if !ok || len(winner.Players) == 0 || len(loser.Players) == 0 {
		return club.MatchResult{}, false
	}
	return club.MatchResult{
		ID:        ResultIDPrefix + m.MatchID,
		WinnerIDs: userIDs(winner),
		LoserIDs:  userIDs(loser),
		PlayedAt:  time.Unix(m.End, 0).UTC(),
	}, true
}

func userIDs(t Team) []string {
	ids := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.UserID)
	}
	return ids
}

// ToPlayers collects every distinct player across matches. The Playtomic level (0-7)
// becomes the skill rating; the latest match a player appears in wins.
// An empty city falls back to the name of the club the match was played at.
func ToPlayers(matches []PadelMatch, city string) []player.Player {
	seen := make(map[string]int)
	var players []player.Player
	for _, m := range matches {
		matchCity := city
		if matchCity == "" {
			matchCity = m.Tenant.Name
		}
		for _, t := range m.Teams {
			for _, p := range t.Players {
				if p.UserID == "" {
					continue
				}
				imported := player.Player{
					ID:           p.UserID,
					DisplayName:  p.Name,
					Sport:        Sport,
					City:         matchCity,
					Gender:       player.GenderMixed,
					SkillRating:  clampLevel(p.Level),
					Availability: player.AvailabilityBoth,
				}
				if i, ok := seen[p.UserID]; ok {
					players[i] = imported
					continue
				}
				seen[p.UserID] = len(players)
				players = append(players, imported)
			}
		}
	}
	return players
}

func clampLevel(level float64) float64 {
	return min(max(level, player.MinSkill), player.MaxSkill)
}
