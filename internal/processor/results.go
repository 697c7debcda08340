package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/pubsub"
)

// Performance ratings are on a 1-5 scale.
const (
	MinPerformance = 1.0
	MaxPerformance = 5.0
)

// RecordResult persists a match result and the rating changes it causes in one transaction.
// Recording the same result id twice returns the original changes and publishes nothing.
// In dry-run mode the changes are computed from the stored ratings but nothing is written.
func (p *Processor) RecordResult(ctx context.Context, result club.MatchResult, dryRun bool) (club.Recorded, error) {
	if err := validateResult(result); err != nil {
		return club.Recorded{}, err
	}
	if result.ID == "" {
		result.ID = p.newID()
	}
	if result.PlayedAt.IsZero() {
		result.PlayedAt = p.now().UTC()
	}
	update := func(current map[string]int) (map[string]int, error) {
		return p.ratings.ProcessTeamResult(current, result.WinnerIDs, result.LoserIDs)
	}

	if dryRun {
		return p.previewResult(ctx, result, update)
	}

	recorded, err := p.store.RecordMatchResult(ctx, result, update)
	if err != nil {
		var perr *apperr.PersistenceError
		if errors.As(err, &perr) {
			p.metrics.IncPersistenceFailures(perr.Op)
		}
		log.Error("Failed to record match result", "result", result.ID, "error", err)
		return club.Recorded{}, err
	}
	if recorded.Duplicate {
		log.Info("Match result already recorded", "result", result.ID)
		return recorded, nil
	}

	p.metrics.IncRatingUpdates(len(recorded.Changes))
	p.counters.Increment(metrics.CounterResultsRecorded)
	log.Info("Recorded match result", "result", result.ID, "winners", result.WinnerIDs, "losers", result.LoserIDs)

	p.publish(ctx, pubsub.EventRatingsUpdated, RatingsUpdatedEvent{ResultID: result.ID, Changes: recorded.Changes}, false)
	if err := p.notifier.SendRatingChanges(result.ID, recorded.Changes, p.names(ctx, result.PlayerIDs()), false); err != nil {
		log.Error("Failed to send rating change notification", "result", result.ID, "error", err)
	}
	return recorded, nil
}

func (p *Processor) previewResult(ctx context.Context, result club.MatchResult, update club.RatingFunc) (club.Recorded, error) {
	ids := result.PlayerIDs()
	players, err := p.store.GetPlayers(ctx, ids)
	if err != nil {
		return club.Recorded{}, err
	}
	if len(players) != len(ids) {
		return club.Recorded{}, fmt.Errorf("players of result %s: %w", result.ID, apperr.ErrNotFound)
	}
	current := make(map[string]int, len(players))
	for _, pl := range players {
		current[pl.ID] = pl.EloRating
	}
	updated, err := update(current)
	if err != nil {
		return club.Recorded{}, err
	}
	changes := make([]club.RatingChange, 0, len(ids))
	for _, id := range ids {
		changes = append(changes, club.RatingChange{PlayerID: id, ResultID: result.ID, OldRating: current[id], NewRating: updated[id], At: result.PlayedAt})
	}
	log.Info("[Dry Run] Would record match result", "result", result.ID, "changes", len(changes))
	return club.Recorded{Changes: changes}, nil
}

func validateResult(result club.MatchResult) error {
	if len(result.WinnerIDs) == 0 || len(result.LoserIDs) == 0 {
		return apperr.Validationf("both teams need at least one player (winners=%d, losers=%d)", len(result.WinnerIDs), len(result.LoserIDs))
	}
	participants := make(map[string]bool)
	for _, id := range result.PlayerIDs() {
		if id == "" {
			return apperr.Validationf("player ids must be non-empty")
		}
		if participants[id] {
			return apperr.Validationf("player %s appears more than once in the result", id)
		}
		participants[id] = true
	}
	for id, perf := range result.Performances {
		if !participants[id] {
			return apperr.Validationf("performance given for %s, who did not play", id)
		}
		if perf < MinPerformance || perf > MaxPerformance {
			return apperr.Validationf("performance of %s is %.2f, must be within [%.0f, %.0f]", id, perf, MinPerformance, MaxPerformance)
		}
	}
	return nil
}

// HandleMatchCompleted records a result delivered as a match-completed event.
func (p *Processor) HandleMatchCompleted(ctx context.Context, data []byte, dryRun bool) (club.Recorded, error) {
	var result club.MatchResult
	if err := p.pubsub.ProcessMessage(data, &result); err != nil {
		return club.Recorded{}, apperr.Validationf("invalid match-completed payload: %v", err)
	}
	log.Debug("Received match-completed event", "result", result.ID)
	return p.RecordResult(ctx, result, dryRun)
}
