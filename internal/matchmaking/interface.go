package matchmaking

import (
	"context"

	"github.com/mauv0809/rallyrank/internal/player"
)

// MatchFinder is the basic scoring path.
type MatchFinder interface {
	FindMatches(pool []player.Player, initiator player.Player, desiredCount int, c Constraints) (MatchingResult, error)
}

// EnhancedMatchFinder is the quality-metric path.
type EnhancedMatchFinder interface {
	FindEnhancedMatches(req EnhancedRequest) (EnhancedMatchingResult, error)
}

// HistorySource provides recent match performance ratings, most recent first.
// It is queried before matching, never from inside the scoring code.
type HistorySource interface {
	GetRecentPerformance(ctx context.Context, playerID string, limit int) ([]float64, error)
}

var (
	_ MatchFinder         = (*Scorer)(nil)
	_ EnhancedMatchFinder = (*Engine)(nil)
)
