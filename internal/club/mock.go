package club

import (
	"context"
	"fmt"
	"sync"

	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/player"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// Unset funcs fall back to an in-memory player map. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Players map[string]player.Player

	UpsertPlayersFunc        func(players []player.Player) error
	GetPoolFunc              func(filter PoolFilter) ([]player.Player, error)
	RecordMatchResultFunc    func(result MatchResult, update RatingFunc) (Recorded, error)
	GetRatingHistoryFunc     func(playerID string, limit int) ([]RatingChange, error)
	GetRecentPerformanceFunc func(playerID string, limit int) ([]float64, error)

	// Call records
	UpsertPlayersCalls     [][]player.Player
	GetPoolCalls           []PoolFilter
	RecordMatchResultCalls []MatchResult
}

// NewMock creates a new mock instance seeded with players.
func NewMock(players ...player.Player) *MockStore {
	m := &MockStore{Players: make(map[string]player.Player)}
	for _, p := range players {
		m.Players[p.ID] = p
	}
	return m
}

func (m *MockStore) UpsertPlayers(_ context.Context, players []player.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	for _, p := range players {
		m.Players[p.ID] = p
	}
	return nil
}

func (m *MockStore) GetPlayer(_ context.Context, id string) (player.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Players[id]
	if !ok {
		return player.Player{}, fmt.Errorf("player %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func (m *MockStore) GetPlayers(_ context.Context, ids []string) ([]player.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := []player.Player{}
	for _, id := range ids {
		if p, ok := m.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players, nil
}

func (m *MockStore) GetAllPlayers(_ context.Context) ([]player.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]player.Player, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p)
	}
	return players, nil
}

func (m *MockStore) GetPool(_ context.Context, filter PoolFilter) ([]player.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPoolCalls = append(m.GetPoolCalls, filter)
	if m.GetPoolFunc != nil {
		return m.GetPoolFunc(filter)
	}
	players := []player.Player{}
	for _, p := range m.Players {
		if (filter.Sport == "" || p.Sport == filter.Sport) &&
			(filter.City == "" || p.City == filter.City) &&
			(filter.Gender == "" || p.Gender == filter.Gender) {
			players = append(players, p)
		}
	}
	return players, nil
}

// RecordMatchResult applies update to the in-memory players unless RecordMatchResultFunc is set.
func (m *MockStore) RecordMatchResult(_ context.Context, result MatchResult, update RatingFunc) (Recorded, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordMatchResultCalls = append(m.RecordMatchResultCalls, result)
	if m.RecordMatchResultFunc != nil {
		return m.RecordMatchResultFunc(result, update)
	}

	current := make(map[string]int)
	for _, id := range result.PlayerIDs() {
		p, ok := m.Players[id]
		if !ok {
			return Recorded{}, &apperr.PersistenceError{Op: "apply ratings", PlayerIDs: result.PlayerIDs(), Err: apperr.ErrNotFound}
		}
		current[id] = p.EloRating
	}
	updated, err := update(current)
	if err != nil {
		return Recorded{}, err
	}
	var changes []RatingChange
	for _, id := range result.PlayerIDs() {
		p := m.Players[id]
		p.EloRating = updated[id]
		m.Players[id] = p
		changes = append(changes, RatingChange{PlayerID: id, ResultID: result.ID, OldRating: current[id], NewRating: updated[id]})
	}
	return Recorded{Changes: changes}, nil
}

func (m *MockStore) GetRatingHistory(_ context.Context, playerID string, limit int) ([]RatingChange, error) {
	if m.GetRatingHistoryFunc != nil {
		return m.GetRatingHistoryFunc(playerID, limit)
	}
	return []RatingChange{}, nil
}

func (m *MockStore) GetRecentPerformance(_ context.Context, playerID string, limit int) ([]float64, error) {
	if m.GetRecentPerformanceFunc != nil {
		return m.GetRecentPerformanceFunc(playerID, limit)
	}
	return []float64{}, nil
}

var _ ClubStore = (*MockStore)(nil)
