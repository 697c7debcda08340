package processor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/playtomic"
)

// SyncPlaytomic imports the players and confirmed results of the club's matches since the
// given time. Stored players keep their gender, city and availability; only the name and
// skill rating follow Playtomic. Results already imported are counted as duplicates.
func (p *Processor) SyncPlaytomic(ctx context.Context, since time.Time, city string, dryRun bool) (SyncSummary, error) {
	if p.tenantID == "" {
		return SyncSummary{}, apperr.Validationf("PLAYTOMIC_TENANT_ID is not configured")
	}
	summaries, err := p.playtomic.GetMatches(ctx, &playtomic.SearchMatchesParams{
		SportID:       "PADEL",
		HasPlayers:    true,
		Sort:          "start_date,ASC",
		TenantIDs:     []string{p.tenantID},
		FromStartDate: since.UTC().Format(playtomic.DateLayout),
	})
	if err != nil {
		return SyncSummary{}, err
	}

	var summary SyncSummary
	matches := make([]playtomic.PadelMatch, 0, len(summaries))
	for _, s := range summaries {
		m, err := p.playtomic.GetSpecificMatch(ctx, s.MatchID)
		if err != nil {
			log.Error("Failed to fetch match details", "matchID", s.MatchID, "error", err)
			summary.Skipped++
			continue
		}
		matches = append(matches, m)
	}
	summary.Matches = len(matches)

	players, err := p.mergeImported(ctx, playtomic.ToPlayers(matches, city))
	if err != nil {
		return summary, err
	}
	if err := p.UpsertPlayers(ctx, players, dryRun); err != nil {
		return summary, err
	}
	summary.Players = len(players)
	if !dryRun {
		for range players {
			p.counters.Increment(metrics.CounterPlayersImported)
		}
	}

	for _, m := range matches {
		result, ok := playtomic.ToResult(m)
		if !ok {
			continue
		}
		recorded, err := p.RecordResult(ctx, result, dryRun)
		if err != nil {
			log.Error("Failed to import match result", "matchID", m.MatchID, "error", err)
			summary.Skipped++
			continue
		}
		if recorded.Duplicate {
			summary.Duplicates++
			continue
		}
		summary.Results++
	}
	log.Info("Playtomic sync finished", "matches", summary.Matches, "players", summary.Players,
		"results", summary.Results, "duplicates", summary.Duplicates, "skipped", summary.Skipped)
	return summary, nil
}

func (p *Processor) mergeImported(ctx context.Context, imported []player.Player) ([]player.Player, error) {
	ids := make([]string, 0, len(imported))
	for _, pl := range imported {
		ids = append(ids, pl.ID)
	}
	existing, err := p.store.GetPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, pl := range imported {
		known, ok := player.Find(existing, pl.ID)
		if !ok {
			continue
		}
		known.DisplayName = pl.DisplayName
		known.SkillRating = pl.SkillRating
		imported[i] = known
	}
	return imported, nil
}
