package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/config"
	"github.com/mauv0809/rallyrank/internal/database"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/notifier"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/playtomic"
	"github.com/mauv0809/rallyrank/internal/processor"
	"github.com/mauv0809/rallyrank/internal/pubsub"
	"github.com/mauv0809/rallyrank/internal/rating"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*Server
	notif  *notifier.Mock
	pubsub *pubsub.MockPubSubClient
}

// setupTestServer initializes a new server with an in-memory database and mock clients.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	notif := notifier.NewMock()
	ps := pubsub.NewMock()
	ratings := rating.New(rating.DefaultKFactor, rating.DefaultElo)
	proc := processor.New(processor.Deps{
		Store:     club.New(db, rating.DefaultElo),
		Brackets:  bracket.NewStore(db),
		Leagues:   league.NewStore(db),
		PubSub:    ps,
		Notifier:  notif,
		Metrics:   metricsSvc,
		Counters:  metrics.New(db),
		Playtomic: playtomic.NewMockClient(),
		Ratings:   ratings,
		Finders: processor.Finders{
			Basic:    matchmaking.NewScorer(matchmaking.DefaultThresholds()),
			Enhanced: matchmaking.NewEngine(ratings, matchmaking.DefaultThresholds()),
		},
		BracketEngine: bracket.NewEngine(ratings, 7),
	})
	return &testServer{
		Server: NewServer(proc, metrics.NewMetricsHandler(reg), config.Config{}),
		notif:  notif,
		pubsub: ps,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func roster(n int) []player.Player {
	players := make([]player.Player, n)
	for i := range players {
		players[i] = player.Player{
			ID:           fmt.Sprintf("p%02d", i+1),
			DisplayName:  fmt.Sprintf("Player %d", i+1),
			Sport:        "padel",
			City:         "Aarhus",
			Gender:       player.GenderMixed,
			SkillRating:  2 + float64(i%4)*0.5,
			EloRating:    1400 + 15*i,
			Availability: player.AvailabilityBoth,
		}
	}
	return players
}

func TestHealthCheckHandler(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestPlayersHandlers(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(t, http.MethodPost, "/players", roster(3))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var players []player.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	assert.Len(t, players, 3)

	rr = s.do(t, http.MethodPost, "/players", []player.Player{{ID: "bad", SkillRating: 8}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/players", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodGet, "/players/ghost/history", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/players/p01/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateRatingsHandler(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(t, http.MethodPost, "/rating/update", updateRatingsRequest{
		Ratings:   map[string]int{"a": 1500, "b": 1500},
		WinnerIDs: []string{"a"},
		LoserIDs:  []string{"b"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp updateRatingsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, map[string]int{"a": 1516, "b": 1484}, resp.Ratings)
	assert.Equal(t, "Intermediate", resp.Ranks["a"])

	rr = s.do(t, http.MethodPost, "/rating/update", updateRatingsRequest{WinnerIDs: []string{"a"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordResultHandler(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/players", roster(4)).Code)

	req := recordResultRequest{
		ResultID:     "r1",
		WinnerIDs:    []string{"p01", "p02"},
		LoserIDs:     []string{"p03", "p04"},
		Performances: map[string]float64{"p01": 4},
	}
	rr := s.do(t, http.MethodPost, "/rating/result", req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var first recordResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	assert.Equal(t, "r1", first.ResultID)
	assert.Len(t, first.Changes, 4)
	assert.False(t, first.Duplicate)

	rr = s.do(t, http.MethodPost, "/rating/result", req)
	require.Equal(t, http.StatusOK, rr.Code)
	var again recordResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	assert.True(t, again.Duplicate)
	assert.Len(t, s.notif.SendRatingChangesCalls, 1, "duplicates are not announced")

	rr = s.do(t, http.MethodGet, "/players/p01/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []club.RatingChange
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "r1", history[0].ResultID)

	rr = s.do(t, http.MethodPost, "/rating/result", recordResultRequest{WinnerIDs: []string{"p01"}, LoserIDs: []string{"p02"}, Performances: map[string]float64{"p02": 7}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results_recorded": 1}`, rr.Body.String())
}

func TestMatchCompletedPushHandler(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/players", roster(2)).Code)

	body, err := pubsub.EncodePush(club.MatchResult{ID: "evt-1", WinnerIDs: []string{"p02"}, LoserIDs: []string{"p01"}})
	require.NoError(t, err)

	rr := s.do(t, http.MethodPost, "/pubsub/match-completed", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, s.pubsub.Topics(), pubsub.EventRatingsUpdated)

	// Unknown players can never be recorded, so the event is acknowledged.
	body, err = pubsub.EncodePush(club.MatchResult{ID: "evt-2", WinnerIDs: []string{"x"}, LoserIDs: []string{"y"}})
	require.NoError(t, err)
	rr = s.do(t, http.MethodPost, "/pubsub/match-completed", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/pubsub/match-completed", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBracketHandlers(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(t, http.MethodPost, "/bracket", createBracketRequest{Name: "Open", Players: roster(18)})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var b bracket.Bracket
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Len(t, b.Matches, 15)

	rr = s.do(t, http.MethodGet, "/bracket/"+b.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	first := b.Matches[0]
	tests := []struct {
		name   string
		target string
		req    advanceRequest
		status int
	}{
		{"unknown bracket", "/bracket/nope/advance", advanceRequest{MatchID: "R1M1", WinnerID: first.Player1.ID}, http.StatusNotFound},
		{"missing fields", "/bracket/" + b.ID + "/advance", advanceRequest{MatchID: "R1M1"}, http.StatusBadRequest},
		{"winner not in match", "/bracket/" + b.ID + "/advance", advanceRequest{MatchID: "R1M1", WinnerID: "someone"}, http.StatusUnprocessableEntity},
		{"stale version", "/bracket/" + b.ID + "/advance", advanceRequest{MatchID: "R1M1", WinnerID: first.Player1.ID, Version: intPtr(5)}, http.StatusConflict},
		{"waiting for players", "/bracket/" + b.ID + "/advance", advanceRequest{MatchID: "R2M1", WinnerID: first.Player1.ID}, http.StatusBadRequest},
		{"advances", "/bracket/" + b.ID + "/advance", advanceRequest{MatchID: "R1M1", WinnerID: first.Player2.ID, Version: intPtr(0)}, http.StatusOK},
		{"already decided", "/bracket/" + b.ID + "/advance", advanceRequest{MatchID: "R1M1", WinnerID: first.Player1.ID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, tt.target, tt.req)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	rr = s.do(t, http.MethodGet, "/bracket/"+b.ID, nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, 1, b.Version)
	assert.Equal(t, first.Player2.ID, b.Matches[8].Player1.ID)

	rr = s.do(t, http.MethodPost, "/bracket", createBracketRequest{Players: roster(5)})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func intPtr(v int) *int { return &v }

func TestLeagueHandlers(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(t, http.MethodPost, "/league/schedule", scheduleLeagueRequest{Name: "Winter", PlayerIDs: []string{"a", "b", "c", "d"}, Weeks: 3})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var l league.League
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	assert.Len(t, l.Rounds, 3)

	rr = s.do(t, http.MethodGet, "/league/"+l.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/league/schedule?dry_run=true", scheduleLeagueRequest{PlayerIDs: []string{"a", "b", "c"}, Weeks: 1})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	rr = s.do(t, http.MethodGet, "/league/"+l.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "dry run must not store the league")

	rr = s.do(t, http.MethodPost, "/league/schedule", scheduleLeagueRequest{PlayerIDs: []string{"a", "b"}, Weeks: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = s.do(t, http.MethodPost, "/league/schedule", scheduleLeagueRequest{PlayerIDs: []string{"a", "b", "a"}, Weeks: 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFindMatchHandler(t *testing.T) {
	s := setupTestServer(t)
	pool := roster(8)

	rr := s.do(t, http.MethodPost, "/match", matchRequest{Pool: pool, InitiatorID: "p01", DesiredCount: 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var basic matchmaking.MatchingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &basic))
	assert.NotEmpty(t, basic.Matches)

	rr = s.do(t, http.MethodPost, "/match", matchRequest{Pool: pool, InitiatorID: "p01", DesiredCount: 3, MatchType: "casual", Trends: map[string]float64{}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var enhanced matchmaking.EnhancedMatchingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &enhanced))
	assert.NotZero(t, enhanced.SkillTolerance)

	rr = s.do(t, http.MethodPost, "/match", matchRequest{Pool: pool, InitiatorID: "p01", DesiredCount: 1, MatchType: "ranked"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/match", matchRequest{Pool: pool, InitiatorID: "p01", DesiredCount: 0, MatchType: "casual"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardHandlers(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/players", roster(3)).Code)

	rr := s.do(t, http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var players []player.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	require.Len(t, players, 3)
	assert.Equal(t, "p03", players[0].ID)

	rr = s.do(t, http.MethodPost, "/leaderboard/post?dry_run=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, s.notif.SendLeaderboardCalls, 1)

	rr = s.do(t, http.MethodPost, "/slack/command/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"formatted_leaderboard"`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.do(t, http.MethodPost, "/match", matchRequest{Pool: roster(4), InitiatorID: "p01", DesiredCount: 1})

	rr := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `rallyrank_match_requests_total{engine="basic"} 1`)
}
