package playtomic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSpecificMatch(t *testing.T) {
	// Sample JSON response from the Playtomic API
	mockJSONResponse := `{
		"owner_id": "user-123",
		"start_date": "2025-07-09T18:00:00",
		"end_date": "2025-07-09T19:30:00",
		"created_at": "2025-07-08T10:00:00",
		"status": "CONFIRMED",
		"game_status": "PLAYED",
		"results_status": "CONFIRMED",
		"resource_name": "Court 1",
		"price": "20 EUR",
		"competition_mode": "COMPETITIVE",
		"tenant": { "tenant_id": "tenant-abc", "tenant_name": "Padel Club" },
		"teams": [{
			"team_id": "1",
			"team_result": "WON",
			"players": [
				{ "user_id": "user-123", "name": "Player A", "level_value": 3.4 },
				{ "user_id": "user-456", "name": "Player B" }
			]
		}, {
			"team_id": "2",
			"players": [
				{ "user_id": "user-789", "name": "Player C", "level_value": 2.9 },
				{ "user_id": "user-999", "name": "Player D", "level_value": 3.1 }
			]
		}],
		"results": [{
			"name": "Set 1",
			"scores": [
				{ "team_id": "1", "score": 6 },
				{ "team_id": "2", "score": 4 }
			]
		}],
		"merchant_access_code": { "code": "12345" }
	}`

	// Create a mock HTTP server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify the request path
		assert.Equal(t, "/v1/matches/match-abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockJSONResponse)
	}))
	defer server.Close()

	// Create our APIClient and point it to the mock server
	client := APIClient{
		httpClient: server.Client(),
		apiClient:  client.NewClient(), // Dummy client, not used in this specific test
		BaseURL:    server.URL,
	}

	match, err := client.GetSpecificMatch(context.Background(), "match-abc")

	require.NoError(t, err)
	assert.Equal(t, "match-abc", match.MatchID)
	assert.Equal(t, "Player A", match.OwnerName)
	assert.Equal(t, Tenant{ID: "tenant-abc", Name: "Padel Club"}, match.Tenant)
	assert.Equal(t, GameStatusPlayed, match.GameStatus)
	assert.Equal(t, ResultsStatusConfirmed, match.ResultsStatus)
	assert.Equal(t, Competition, match.CompetitionType)
	assert.NotEqual(t, int64(0), match.Start, "Start time should be parsed")
	require.Len(t, match.Teams, 2)
	assert.Equal(t, 3.4, match.Teams[0].Players[0].Level)
	assert.Equal(t, 0.0, match.Teams[0].Players[1].Level)
	assert.Equal(t, 4, match.Results[0].Scores["2"])

	result, ok := ToResult(match)
	require.True(t, ok)
	assert.Equal(t, "playtomic-match-abc", result.ID)
	assert.Equal(t, []string{"user-123", "user-456"}, result.WinnerIDs)
	assert.Equal(t, []string{"user-789", "user-999"}, result.LoserIDs)
}

func TestGetSpecificMatch_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	client := APIClient{httpClient: server.Client(), apiClient: client.NewClient(), BaseURL: server.URL}
	_, err := client.GetSpecificMatch(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func team(id, result string, scores ...string) Team {
	t := Team{ID: id, TeamResult: result}
	for _, s := range scores {
		t.Players = append(t.Players, Player{UserID: s, Name: s})
	}
	return t
}

func sets(scores ...[2]int) []SetResult {
	out := make([]SetResult, 0, len(scores))
	for i, s := range scores {
		out = append(out, SetResult{Name: fmt.Sprintf("Set %d", i+1), Scores: map[string]int{"a": s[0], "b": s[1]}})
	}
	return out
}

func TestToResult(t *testing.T) {
	tests := []struct {
		name    string
		match   PadelMatch
		ok      bool
		winners []string
	}{
		{
			name: "more sets wins",
			match: PadelMatch{MatchID: "m1", GameStatus: GameStatusPlayed, ResultsStatus: ResultsStatusConfirmed,
				Teams: []Team{team("a", "", "p1"), team("b", "", "p2")}, Results: sets([2]int{4, 6}, [2]int{6, 3}, [2]int{2, 6})},
			ok: true, winners: []string{"p2"},
		},
		{
			name: "level sets falls back to team result",
			match: PadelMatch{MatchID: "m2", GameStatus: GameStatusPlayed, ResultsStatus: ResultsStatusConfirmed,
				Teams: []Team{team("a", TeamResultWon, "p1"), team("b", "LOST", "p2")}, Results: sets([2]int{6, 4}, [2]int{4, 6})},
			ok: true, winners: []string{"p1"},
		},
		{
			name: "undecided",
			match: PadelMatch{MatchID: "m3", GameStatus: GameStatusPlayed, ResultsStatus: ResultsStatusConfirmed,
				Teams: []Team{team("a", "", "p1"), team("b", "", "p2")}},
		},
		{
			name: "not confirmed",
			match: PadelMatch{MatchID: "m4", GameStatus: GameStatusPlayed, ResultsStatus: ResultsStatusPending,
				Teams: []Team{team("a", "", "p1"), team("b", "", "p2")}, Results: sets([2]int{6, 0})},
		},
		{
			name: "empty side",
			match: PadelMatch{MatchID: "m5", GameStatus: GameStatusPlayed, ResultsStatus: ResultsStatusConfirmed,
				Teams: []Team{team("a", "", "p1"), team("b", "")}, Results: sets([2]int{6, 0})},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ToResult(tt.match)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.winners, result.WinnerIDs)
				assert.Equal(t, ResultIDPrefix+tt.match.MatchID, result.ID)
			}
		})
	}
}

func TestToPlayers(t *testing.T) {
	matches := []PadelMatch{
		{Teams: []Team{{ID: "a", Players: []Player{{UserID: "u1", Name: "Ada", Level: 2.5}, {UserID: "", Name: "Guest"}}}}},
		{Teams: []Team{{ID: "a", Players: []Player{{UserID: "u1", Name: "Ada L.", Level: 9}, {UserID: "u2", Name: "Bob", Level: -1}}}}},
	}

	players := ToPlayers(matches, "Copenhagen")
	require.Len(t, players, 2)
	assert.Equal(t, "u1", players[0].ID)
	assert.Equal(t, "Ada L.", players[0].DisplayName)
	assert.Equal(t, player.MaxSkill, players[0].SkillRating)
	assert.Equal(t, player.MinSkill, players[1].SkillRating)
	assert.Equal(t, Sport, players[1].Sport)
	assert.Equal(t, "Copenhagen", players[1].City)
}

func TestToPlayers_CityFallsBackToClub(t *testing.T) {
	matches := []PadelMatch{
		{Tenant: Tenant{ID: "t1", Name: "Aarhus Padel"}, Teams: []Team{team("a", "", "u1")}},
		{Tenant: Tenant{ID: "t2", Name: "Odense Padel"}, Teams: []Team{team("a", "", "u2")}},
	}

	players := ToPlayers(matches, "")
	require.Len(t, players, 2)
	assert.Equal(t, "Aarhus Padel", players[0].City)
	assert.Equal(t, "Odense Padel", players[1].City)

	players = ToPlayers(matches, "Copenhagen")
	assert.Equal(t, "Copenhagen", players[0].City)
	assert.Equal(t, "Copenhagen", players[1].City)
}
