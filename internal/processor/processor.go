package processor

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/pubsub"
	"github.com/mauv0809/rallyrank/internal/rating"
)

// New creates a new Processor.
func New(d Deps) *Processor {
	return &Processor{
		store:         d.Store,
		brackets:      d.Brackets,
		leagues:       d.Leagues,
		pubsub:        d.PubSub,
		notifier:      d.Notifier,
		metrics:       d.Metrics,
		counters:      d.Counters,
		playtomic:     d.Playtomic,
		ratings:       d.Ratings,
		finders:       d.Finders,
		bracketEngine: d.BracketEngine,
		tenantID:      d.TenantID,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// FindMatches runs the basic scorer. Without a pool the initiator's sport pool is loaded.
func (p *Processor) FindMatches(ctx context.Context, req MatchRequest) (matchmaking.MatchingResult, error) {
	start := time.Now()
	p.metrics.IncMatchRequests(metrics.EngineBasic)

	if req.InitiatorID == "" {
		return matchmaking.MatchingResult{}, apperr.Validationf("initiatorId is required")
	}
	initiator, pool, err := p.resolvePool(ctx, req.Pool, req.InitiatorID, club.PoolFilter{})
	if err != nil {
		return matchmaking.MatchingResult{}, err
	}

	result, err := p.finders.Basic.FindMatches(pool, initiator, req.DesiredCount, req.Constraints)
	p.metrics.ObserveMatchDuration(metrics.EngineBasic, time.Since(start).Seconds())
	if err != nil {
		return matchmaking.MatchingResult{}, err
	}
	if result.Found {
		p.metrics.IncMatchesFound(metrics.EngineBasic)
	}
	log.Info("Basic matching finished", "initiator", initiator.ID, "pool", len(pool), "found", result.Found, "score", result.Score)
	return result, nil
}

// FindEnhancedMatches runs the enhanced engine. Without a pool the sport pool is loaded;
// without trends they are computed from stored performance history.
func (p *Processor) FindEnhancedMatches(ctx context.Context, req matchmaking.EnhancedRequest) (matchmaking.EnhancedMatchingResult, error) {
	start := time.Now()
	p.metrics.IncMatchRequests(metrics.EngineEnhanced)

	if len(req.Pool) == 0 && req.InitiatorID != "" {
		_, pool, err := p.resolvePool(ctx, nil, req.InitiatorID, club.PoolFilter{Sport: req.Sport})
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return matchmaking.EnhancedMatchingResult{}, err
		}
		req.Pool = pool
	}
	if req.Trends == nil && len(req.Pool) > 0 {
		ids := make([]string, 0, len(req.Pool))
		for _, c := range req.Pool {
			ids = append(ids, c.ID)
		}
		trends, err := matchmaking.CollectTrends(ctx, p.store, ids)
		if err != nil {
			return matchmaking.EnhancedMatchingResult{}, err
		}
		req.Trends = trends
	}

	result, err := p.finders.Enhanced.FindEnhancedMatches(req)
	p.metrics.ObserveMatchDuration(metrics.EngineEnhanced, time.Since(start).Seconds())
	if err != nil {
		return matchmaking.EnhancedMatchingResult{}, err
	}
	if result.Found {
		p.metrics.IncMatchesFound(metrics.EngineEnhanced)
	}
	log.Info("Enhanced matching finished", "initiator", req.InitiatorID, "type", req.MatchType, "pool", len(req.Pool),
		"found", result.Found, "score", result.MatchScore, "confidence", result.ConfidenceLevel)
	return result, nil
}

// resolvePool returns the initiator and the pool to match against. A given pool is used as
// is, with the initiator looked up in it first and in the store second.
func (p *Processor) resolvePool(ctx context.Context, pool []player.Player, initiatorID string, filter club.PoolFilter) (player.Player, []player.Player, error) {
	if initiator, ok := player.Find(pool, initiatorID); ok {
		return initiator, pool, nil
	}
	initiator, err := p.store.GetPlayer(ctx, initiatorID)
	if err != nil {
		return player.Player{}, pool, err
	}
	if len(pool) > 0 {
		return initiator, append(pool, initiator), nil
	}
	if filter.Sport == "" {
		filter.Sport = initiator.Sport
	}
	pool, err = p.store.GetPool(ctx, filter)
	if err != nil {
		p.metrics.IncPersistenceFailures("load pool")
		return player.Player{}, nil, err
	}
	if _, ok := player.Find(pool, initiatorID); !ok {
		pool = append(pool, initiator)
	}
	return initiator, pool, nil
}

// UpdateRatings rates a team result without persisting anything.
func (p *Processor) UpdateRatings(ratings map[string]int, winnerIDs, loserIDs []string) (map[string]int, map[string]string, error) {
	updated, err := p.ratings.ProcessTeamResult(ratings, winnerIDs, loserIDs)
	if err != nil {
		return nil, nil, err
	}
	return updated, rating.RankDescriptions(updated), nil
}

// UpsertPlayers validates and stores players. New players start at the default rating.
func (p *Processor) UpsertPlayers(ctx context.Context, players []player.Player, dryRun bool) error {
	players = append([]player.Player(nil), players...)
	for i, pl := range players {
		if pl.ID == "" {
			return apperr.Validationf("player id is required")
		}
		if !player.ValidSkill(pl.SkillRating) {
			return apperr.Validationf("player %s: skill rating %.2f is outside [%.0f, %.0f]", pl.ID, pl.SkillRating, player.MinSkill, player.MaxSkill)
		}
		if pl.EloRating <= 0 {
			players[i].EloRating = p.ratings.DefaultElo
		}
	}
	if dryRun {
		log.Info("[Dry Run] Would upsert players", "count", len(players))
		return nil
	}
	if err := p.store.UpsertPlayers(ctx, players); err != nil {
		p.metrics.IncPersistenceFailures("upsert players")
		return err
	}
	return nil
}

// Players returns every stored player.
func (p *Processor) Players(ctx context.Context) ([]player.Player, error) {
	return p.store.GetAllPlayers(ctx)
}

// PlayerHistory returns the latest rating changes of a player, most recent first.
func (p *Processor) PlayerHistory(ctx context.Context, playerID string, limit int) ([]club.RatingChange, error) {
	if _, err := p.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	return p.store.GetRatingHistory(ctx, playerID, limit)
}

// Leaderboard returns every player ordered by rating, highest first.
func (p *Processor) Leaderboard(ctx context.Context) ([]player.Player, error) {
	players, err := p.store.GetAllPlayers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].EloRating != players[j].EloRating {
			return players[i].EloRating > players[j].EloRating
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

// PostLeaderboard sends the rating ladder to Slack.
func (p *Processor) PostLeaderboard(ctx context.Context, dryRun bool) error {
	players, err := p.Leaderboard(ctx)
	if err != nil {
		return err
	}
	return p.notifier.SendLeaderboard(players, dryRun)
}

// LeaderboardResponse formats the rating ladder for a slash command reply.
func (p *Processor) LeaderboardResponse(ctx context.Context) (any, error) {
	players, err := p.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return p.notifier.FormatLeaderboardResponse(players)
}

// Stats returns the lifetime counters.
func (p *Processor) Stats() (map[string]int, error) {
	return p.counters.GetAll()
}

func (p *Processor) names(ctx context.Context, ids []string) map[string]string {
	players, err := p.store.GetPlayers(ctx, ids)
	if err != nil {
		log.Warn("Failed to load player names", "error", err)
		return nil
	}
	names := make(map[string]string, len(players))
	for _, pl := range players {
		names[pl.ID] = pl.DisplayName
	}
	return names
}

func (p *Processor) publish(ctx context.Context, topic pubsub.EventType, data any, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would publish event", "topic", topic)
		return
	}
	if err := p.pubsub.SendMessage(ctx, topic, data); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}
