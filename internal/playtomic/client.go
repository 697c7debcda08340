package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

// DateLayout is the timestamp format the Playtomic API uses in requests and responses.
const DateLayout = "2006-01-02T15:04:05"

// APIClient is a custom Playtomic API client that implements the PlaytomicClient interface.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
}

// NewClient creates a new custom Playtomic client.
func NewClient() PlaytomicClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiClient: client.NewClient(
			client.WithTimeout(10*time.Second),
			client.WithRetries(3),
		),
		BaseURL: "https://api.playtomic.io",
	}
}

// Ensure APIClient implements the PlaytomicClient interface.
var _ PlaytomicClient = (*APIClient)(nil)

// GetMatches fetches a list of matches based on the provided search parameters.
func (c *APIClient) GetMatches(ctx context.Context, params *SearchMatchesParams) ([]MatchSummary, error) {
	const pageSize = 300
	var (
		allMatches []MatchSummary
		page       = 0
	)

	for {
		externalParams := &models.SearchMatchesParams{
			SportID:       params.SportID,
			HasPlayers:    params.HasPlayers,
			Sort:          params.Sort,
			TenantIDs:     params.TenantIDs,
			FromStartDate: params.FromStartDate,
			Size:          pageSize,
			Page:          page,
		}

		log.Debug("Fetching matches from Playtomic API", "params", externalParams)
		matches, err := c.apiClient.GetMatches(ctx, externalParams)
		if err != nil {
			return nil, fmt.Errorf("error fetching matches from playtomic api: %w", err)
		}

		log.Debug("Fetched match page", "count", len(matches), "page", page)
		for _, m := range matches {
			allMatches = append(allMatches, MatchSummary{
				MatchID: m.MatchID,
				OwnerID: m.OwnerID,
			})
		}

		// If we got less than pageSize, we've reached the last page
		if len(matches) < pageSize {
			break
		}
		page++
	}
	log.Info("Fetched all matches", "count", len(allMatches))
	return allMatches, nil
}

// GetSpecificMatch fetches a specific match by its ID.
func (c *APIClient) GetSpecificMatch(ctx context.Context, matchID string) (PadelMatch, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PadelMatch{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-AU,en;q=0.9")
	req.Header.Set("User-Agent", "PlaytomicGoClient/1.0")
	log.Debug("Requesting specific match from Playtomic API", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PadelMatch{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Playtomic API", "status", resp.StatusCode, "body", string(body))
		return PadelMatch{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var matchResponse playtomicMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matchResponse); err != nil {
		return PadelMatch{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return toPadelMatch(matchID, matchResponse)
}

var knownGameStatuses = map[string]GameStatus{
	string(GameStatusPending):    GameStatusPending,
	string(GameStatusPlayed):     GameStatusPlayed,
	string(GameStatusCanceled):   GameStatusCanceled,
	string(GameStatusWaitingFor): GameStatusWaitingFor,
	string(GameStatusExpired):    GameStatusExpired,
	string(GameStatusInProgress): GameStatusInProgress,
}

var knownResultsStatuses = map[string]ResultsStatus{
	string(ResultsStatusPending):    ResultsStatusPending,
	string(ResultsStatusConfirmed):  ResultsStatusConfirmed,
	string(ResultsStatusInvalid):    ResultsStatusInvalid,
	string(ResultsStatusNotAllowed): ResultsStatusNotAllowed,
	string(ResultsStatusExpired):    ResultsStatusExpired,
	string(ResultsStatusCanceled):   ResultsStatusCanceled,
	string(ResultsStatusWaitingFor): ResultsStatusWaitingFor,
	string(ResultsStatusValidating): ResultsStatusValidating,
}

func toPadelMatch(matchID string, r playtomicMatchResponse) (PadelMatch, error) {
	startTime, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return PadelMatch{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	endTime, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return PadelMatch{}, fmt.Errorf("failed to parse end time: %w", err)
	}
	createdAtTime, err := time.Parse(DateLayout, r.CreatedAt)
	if err != nil {
		return PadelMatch{}, fmt.Errorf("failed to parse created at time: %w", err)
	}

	var teams []Team
	ownerName := ""
	for _, responseTeam := range r.Teams {
		t := Team{ID: responseTeam.TeamID}
		if responseTeam.TeamResult != nil {
			t.TeamResult = *responseTeam.TeamResult
		}
		for _, responsePlayer := range responseTeam.Players {
			p := Player{UserID: responsePlayer.UserID, Name: responsePlayer.Name}
			if responsePlayer.LevelValue != nil {
				p.Level = *responsePlayer.LevelValue
			}
			if p.UserID == r.OwnerID && ownerName == "" {
				ownerName = p.Name
			}
			t.Players = append(t.Players, p)
		}
		teams = append(teams, t)
	}

	var results []SetResult
	for _, responseResult := range r.Results {
		set := SetResult{
			Name:   responseResult.Name,
			Scores: make(map[string]int),
		}
		for _, score := range responseResult.Scores {
			set.Scores[score.TeamID] = score.Score
		}
		results = append(results, set)
	}

	gameStatus, ok := knownGameStatuses[r.GameStatus]
	if !ok {
		gameStatus = GameStatusUnknown
		log.Warn("Unknown game status received from Playtomic API", "status", r.GameStatus, "matchID", matchID)
	}
	resultsStatus, ok := knownResultsStatuses[r.ResultsStatus]
	if !ok {
		log.Warn("Unknown results status received from Playtomic API", "status", r.ResultsStatus, "matchID", matchID)
	}

	m := PadelMatch{
		MatchID:         matchID,
		OwnerID:         r.OwnerID,
		OwnerName:       ownerName,
		Start:           startTime.Unix(),
		End:             endTime.Unix(),
		CreatedAt:       createdAtTime.Unix(),
		Teams:           teams,
		GameStatus:      gameStatus,
		Status:          r.Status,
		Results:         results,
		ResultsStatus:   resultsStatus,
		Tenant:          Tenant{ID: r.Tenant.ID, Name: r.Tenant.Name},
		CompetitionType: CompetitionType(r.CompetitionType),
	}
	return m, nil
}
