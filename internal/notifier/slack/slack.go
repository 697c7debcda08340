package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/notifier"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/rating"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
// A Notifier without an API client only logs what it would have sent.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. An empty token yields a log-only notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	n := &Notifier{
		channelID: channelID,
		metrics:   metrics,
	}
	if token != "" {
		n.api = slack.New(token)
	} else {
		log.Warn("Slack token not configured, notifications will only be logged")
	}
	return n
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotificationsFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotificationsSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendChampion(b *bracket.Bracket, dryRun bool) error {
	msg := s.formatChampion(b)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeagueSchedule(l *league.League, names map[string]string, dryRun bool) error {
	msg := s.formatLeagueSchedule(l, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendRatingChanges(resultID string, changes []club.RatingChange, names map[string]string, dryRun bool) error {
	msg := s.formatRatingChanges(resultID, changes, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(players []player.Player, dryRun bool) error {
	msg := s.formatLeaderboard(players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(players []player.Player) (any, error) {
	return s.formatLeaderboard(players), nil
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// formatChampion announces the winner of a finished bracket.
func (s *Notifier) formatChampion(b *bracket.Bracket) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s is decided! 🏆", b.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	champ, ok := b.Champion()
	if !ok {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "The final has not been played yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	text := fmt.Sprintf("*%s* (%s) wins the tournament!", champ.DisplayName, seedLabel(champ))
	if final := b.Final(); final != nil {
		runnerUp := final.Player1
		if runnerUp != nil && runnerUp.ID == champ.ID {
			runnerUp = final.Player2
		}
		if runnerUp != nil {
			text += fmt.Sprintf("\n> Runner-up: %s", runnerUp.DisplayName)
		}
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))

	contextText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("%d players • %d rounds", b.Size, b.Rounds), false, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

func seedLabel(e bracket.Entrant) string {
	if e.Seed == 0 {
		return "unseeded"
	}
	return fmt.Sprintf("seed #%d", e.Seed)
}

// formatLeagueSchedule lists the pairings of every week.
func (s *Notifier) formatLeagueSchedule(l *league.League, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("📅 %s schedule", l.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	for _, r := range l.Rounds {
		lines := make([]string, 0, len(r.Pairings))
		for _, p := range r.Pairings {
			lines = append(lines, fmt.Sprintf("• %s vs %s", nameOf(names, p.Home), nameOf(names, p.Away)))
		}
		text := fmt.Sprintf("*Week %d*\n%s", r.Number, strings.Join(lines, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	contextText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("%d players • %d weeks", len(l.PlayerIDs), l.Weeks), false, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatRatingChanges shows the rating movement caused by a single result, biggest winners first.
func (s *Notifier) formatRatingChanges(resultID string, changes []club.RatingChange, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📈 Ratings updated", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	sorted := append([]club.RatingChange(nil), changes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Delta() > sorted[j].Delta()
	})

	lines := make([]string, 0, len(sorted))
	for _, c := range sorted {
		lines = append(lines, fmt.Sprintf("%s: %d → %d (%+d) _%s_",
			nameOf(names, c.PlayerID), c.OldRating, c.NewRating, c.Delta(), rating.RankDescription(c.NewRating)))
	}
	if len(lines) == 0 {
		lines = append(lines, "No rating changes.")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))

	contextText := slack.NewTextBlockObject("mrkdwn", "Result "+resultID, false, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the rating ladder.
func (s *Notifier) formatLeaderboard(players []player.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Rating Ladder 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players found.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	ranked := append([]player.Player(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EloRating != ranked[j].EloRating {
			return ranked[i].EloRating > ranked[j].EloRating
		}
		return ranked[i].ID < ranked[j].ID
	})

	// Player Ranks
	for i, p := range ranked {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> *Elo*: %d (%s) | *Skill*: %.1f",
			rank,
			medal(rank),
			p.DisplayName,
			p.EloRating,
			rating.RankDescription(p.EloRating),
			p.SkillRating,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
