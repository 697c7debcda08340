package notifier

import (
	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/player"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For finished tournaments
	SendChampion(b *bracket.Bracket, dryRun bool) error
	// For newly scheduled leagues; names maps player ids to display names
	SendLeagueSchedule(l *league.League, names map[string]string, dryRun bool) error
	// For recorded results
	SendRatingChanges(resultID string, changes []club.RatingChange, names map[string]string, dryRun bool) error
	// For the ladder
	SendLeaderboard(players []player.Player, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(players []player.Player) (any, error)
}
