package matchmaking

import (
	"context"
	"fmt"
)

// HistoryWindow is how many recent performance ratings feed a trend.
const HistoryWindow = 10

// PerformanceTrend compares the most recent performance ratings (1–5 scale) against the ones
// before them: the last three against the three before those, or the recent half against the
// older half when fewer than six are known. history is ordered most recent first; only the
// first HistoryWindow entries count. A positive trend means the player is improving.
func PerformanceTrend(history []float64) float64 {
	if len(history) > HistoryWindow {
		history = history[:HistoryWindow]
	}
	if len(history) < 2 {
		return 0
	}
	window := min(3, len(history)/2)
	recent := history[:window]
	older := history[window:min(window+3, len(history))]
	return mean(recent) - mean(older)
}

func mean(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

// CollectTrends fetches history once per player and turns it into the trend map the engine consumes.
func CollectTrends(ctx context.Context, src HistorySource, playerIDs []string) (map[string]float64, error) {
	trends := make(map[string]float64, len(playerIDs))
	for _, id := range playerIDs {
		history, err := src.GetRecentPerformance(ctx, id, HistoryWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to load performance history for %s: %w", id, err)
		}
		trends[id] = PerformanceTrend(history)
	}
	return trends, nil
}
