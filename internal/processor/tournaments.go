package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/pubsub"
)

// CreateBracket seeds and stores a new bracket.
func (p *Processor) CreateBracket(ctx context.Context, req BracketRequest, dryRun bool) (*bracket.Bracket, error) {
	pool, err := p.bracketPool(ctx, req)
	if err != nil {
		return nil, err
	}
	size := req.Size
	if size == 0 {
		size = bracket.Size
	}
	name := req.Name
	if name == "" {
		name = "Tournament"
	}

	b, err := p.bracketEngine.Create(p.newID(), name, pool, size)
	if err != nil {
		return nil, err
	}
	if dryRun {
		log.Info("[Dry Run] Would store bracket", "bracket", b.ID, "name", b.Name)
		return b, nil
	}
	if err := p.brackets.Create(ctx, b); err != nil {
		p.metrics.IncPersistenceFailures("create bracket")
		return nil, err
	}
	p.metrics.IncBracketsCreated()
	log.Info("Created bracket", "bracket", b.ID, "name", b.Name, "pool", len(pool))
	return b, nil
}

func (p *Processor) bracketPool(ctx context.Context, req BracketRequest) ([]player.Player, error) {
	switch {
	case len(req.Pool) > 0:
		return req.Pool, nil
	case len(req.PlayerIDs) > 0:
		players, err := p.store.GetPlayers(ctx, req.PlayerIDs)
		if err != nil {
			return nil, err
		}
		if missing := missingIDs(req.PlayerIDs, players); len(missing) > 0 {
			return nil, fmt.Errorf("players %s: %w", strings.Join(missing, ", "), apperr.ErrNotFound)
		}
		return players, nil
	default:
		return p.store.GetAllPlayers(ctx)
	}
}

func missingIDs(ids []string, players []player.Player) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := player.Find(players, id); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// GetBracket loads a stored bracket.
func (p *Processor) GetBracket(ctx context.Context, id string) (*bracket.Bracket, error) {
	return p.brackets.Get(ctx, id)
}

// AdvanceBracket records the winner of a bracket match. expectedVersion, when given, must
// match the stored version. Deciding the final publishes a completion event and announces
// the champion.
func (p *Processor) AdvanceBracket(ctx context.Context, id, matchID, winnerID string, expectedVersion *int, dryRun bool) (*bracket.Bracket, error) {
	var (
		b   *bracket.Bracket
		err error
	)
	if dryRun {
		b, err = p.brackets.Get(ctx, id)
		if err == nil {
			version := b.Version
			if expectedVersion != nil {
				version = *expectedVersion
			}
			err = b.Advance(matchID, winnerID, version)
		}
	} else {
		b, err = bracket.AdvanceStored(ctx, p.brackets, id, matchID, winnerID, expectedVersion)
	}
	if err != nil {
		var perr *apperr.PersistenceError
		if errors.As(err, &perr) {
			p.metrics.IncPersistenceFailures(perr.Op)
		}
		return nil, err
	}

	if !dryRun {
		p.metrics.IncBracketAdvances()
	}
	log.Info("Advanced bracket", "bracket", id, "match", matchID, "winner", winnerID, "version", b.Version)
	p.publish(ctx, pubsub.EventBracketAdvanced, BracketAdvancedEvent{BracketID: id, MatchID: matchID, WinnerID: winnerID, Version: b.Version}, dryRun)

	if champ, ok := b.Champion(); ok {
		log.Info("Bracket completed", "bracket", id, "champion", champ.ID)
		p.publish(ctx, pubsub.EventBracketCompleted, BracketCompletedEvent{BracketID: id, ChampionID: champ.ID}, dryRun)
		if !dryRun {
			p.counters.Increment(metrics.CounterBracketsCompleted)
		}
		if err := p.notifier.SendChampion(b, dryRun); err != nil {
			log.Error("Failed to send champion notification", "bracket", id, "error", err)
		}
	}
	return b, nil
}

// ScheduleLeague builds and stores a round-robin league over weeks.
func (p *Processor) ScheduleLeague(ctx context.Context, name string, playerIDs []string, weeks int, dryRun bool) (*league.League, error) {
	if name == "" {
		name = "League"
	}
	l, err := league.New(p.newID(), name, playerIDs, weeks, p.now())
	if err != nil {
		return nil, err
	}
	names := p.names(ctx, playerIDs)

	if dryRun {
		log.Info("[Dry Run] Would store league", "league", l.ID, "name", l.Name)
	} else {
		if err := p.leagues.Create(ctx, l); err != nil {
			p.metrics.IncPersistenceFailures("create league")
			return nil, err
		}
		p.metrics.IncLeaguesScheduled()
		p.counters.Increment(metrics.CounterLeaguesScheduled)
		log.Info("Scheduled league", "league", l.ID, "players", len(playerIDs), "weeks", weeks)
	}

	p.publish(ctx, pubsub.EventLeagueScheduled, LeagueScheduledEvent{LeagueID: l.ID, PlayerIDs: l.PlayerIDs, Weeks: l.Weeks}, dryRun)
	if err := p.notifier.SendLeagueSchedule(l, names, dryRun); err != nil {
		log.Error("Failed to send league schedule notification", "league", l.ID, "error", err)
	}
	return l, nil
}

// GetLeague loads a stored league.
func (p *Processor) GetLeague(ctx context.Context, id string) (*league.League, error) {
	return p.leagues.Get(ctx, id)
}
