package club

import (
	"context"

	"github.com/mauv0809/rallyrank/internal/player"
)

// ClubStore defines the interface for interacting with the club's players, results and history.
type ClubStore interface {
	UpsertPlayers(ctx context.Context, players []player.Player) error
	GetPlayer(ctx context.Context, id string) (player.Player, error)
	GetPlayers(ctx context.Context, ids []string) ([]player.Player, error)
	GetAllPlayers(ctx context.Context) ([]player.Player, error)
	GetPool(ctx context.Context, filter PoolFilter) ([]player.Player, error)
	RecordMatchResult(ctx context.Context, result MatchResult, update RatingFunc) (Recorded, error)
	GetRatingHistory(ctx context.Context, playerID string, limit int) ([]RatingChange, error)
	GetRecentPerformance(ctx context.Context, playerID string, limit int) ([]float64, error)
}
