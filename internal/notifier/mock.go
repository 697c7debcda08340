package notifier

import (
	"sync"

	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/player"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for send functions
	SendChampionFunc      func(b *bracket.Bracket, dryRun bool) error
	SendRatingChangesFunc func(resultID string, changes []club.RatingChange, dryRun bool) error

	// Call records
	SendChampionCalls       []*bracket.Bracket
	SendLeagueScheduleCalls []struct {
		League *league.League
		Names  map[string]string
	}
	SendRatingChangesCalls []struct {
		ResultID string
		Changes  []club.RatingChange
		Names    map[string]string
		DryRun   bool
	}
	SendLeaderboardCalls [][]player.Player

	FormatLeaderboardResponseFunc func(players []player.Player) (any, error)
	LastLeaderboardResponse       any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChampionCalls = nil
	m.SendLeagueScheduleCalls = nil
	m.SendRatingChangesCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendChampion(b *bracket.Bracket, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChampionCalls = append(m.SendChampionCalls, b)
	if m.SendChampionFunc != nil {
		return m.SendChampionFunc(b, dryRun)
	}
	return nil
}

func (m *Mock) SendLeagueSchedule(l *league.League, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeagueScheduleCalls = append(m.SendLeagueScheduleCalls, struct {
		League *league.League
		Names  map[string]string
	}{l, names})
	return nil
}

func (m *Mock) SendRatingChanges(resultID string, changes []club.RatingChange, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingChangesCalls = append(m.SendRatingChangesCalls, struct {
		ResultID string
		Changes  []club.RatingChange
		Names    map[string]string
		DryRun   bool
	}{resultID, changes, names, dryRun})
	if m.SendRatingChangesFunc != nil {
		return m.SendRatingChangesFunc(resultID, changes, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(players []player.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, players)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(players []player.Player) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(players)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

var _ Notifier = (*Mock)(nil)
