package processor

import (
	"time"

	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/playtomic"
	"github.com/mauv0809/rallyrank/internal/pubsub"
	"github.com/mauv0809/rallyrank/internal/rating"
)

// Processor handles the business logic behind every endpoint: it loads what the pure
// engines need from the stores, runs them, persists the outcome and fans out events.
type Processor struct {
	store     club.ClubStore
	brackets  bracket.Store
	leagues   league.Store
	pubsub    pubsub.PubSubClient
	notifier  Notifier
	metrics   metrics.Metrics
	counters  metrics.MetricsStore
	playtomic playtomic.PlaytomicClient

	ratings       rating.System
	finders       Finders
	bracketEngine *bracket.Engine
	tenantID      string

	now   func() time.Time
	newID func() string
}

// Deps collects the collaborators of a Processor.
type Deps struct {
	Store         club.ClubStore
	Brackets      bracket.Store
	Leagues       league.Store
	PubSub        pubsub.PubSubClient
	Notifier      Notifier
	Metrics       metrics.Metrics
	Counters      metrics.MetricsStore
	Playtomic     playtomic.PlaytomicClient
	Ratings       rating.System
	Finders       Finders
	BracketEngine *bracket.Engine
	// TenantID is the Playtomic club synced by SyncPlaytomic.
	TenantID string
}

// MatchRequest is the input of the basic matching path.
type MatchRequest struct {
	Pool         []player.Player
	InitiatorID  string
	DesiredCount int
	Constraints  matchmaking.Constraints
}

// BracketRequest describes a bracket to create. Pool wins over PlayerIDs; with neither,
// every stored player is eligible.
type BracketRequest struct {
	Name      string
	Pool      []player.Player
	PlayerIDs []string
	Size      int
}

// SyncSummary reports what a Playtomic sync imported.
type SyncSummary struct {
	Matches    int `json:"matches"`
	Players    int `json:"players"`
	Results    int `json:"results"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// RatingsUpdatedEvent is published after a result changed ratings.
type RatingsUpdatedEvent struct {
	ResultID string              `msgpack:"result_id"`
	Changes  []club.RatingChange `msgpack:"changes"`
}

// BracketAdvancedEvent is published after a bracket match was decided.
type BracketAdvancedEvent struct {
	BracketID string `msgpack:"bracket_id"`
	MatchID   string `msgpack:"match_id"`
	WinnerID  string `msgpack:"winner_id"`
	Version   int    `msgpack:"version"`
}

// BracketCompletedEvent is published once a bracket's final is decided.
type BracketCompletedEvent struct {
	BracketID  string `msgpack:"bracket_id"`
	ChampionID string `msgpack:"champion_id"`
}

// LeagueScheduledEvent is published after a league schedule was stored.
type LeagueScheduledEvent struct {
	LeagueID  string   `msgpack:"league_id"`
	PlayerIDs []string `msgpack:"player_ids"`
	Weeks     int      `msgpack:"weeks"`
}
