package http

import (
	"net/http"
	"time"

	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/config"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/processor"
)

type Server struct {
	Processor      *processor.Processor
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}

// matchRequest feeds both matching paths: without matchType the basic scorer answers.
type matchRequest struct {
	Pool         []player.Player    `json:"pool,omitempty"`
	InitiatorID  string             `json:"initiatorId"`
	DesiredCount int                `json:"desiredCount"`
	MatchType    string             `json:"matchType,omitempty"`
	Sport        string             `json:"sport,omitempty"`
	City         string             `json:"city,omitempty"`
	Gender       player.Gender      `json:"gender,omitempty"`
	SkillLevel   float64            `json:"skillLevel,omitempty"`
	Trends       map[string]float64 `json:"trends,omitempty"`
}

type createBracketRequest struct {
	Name      string          `json:"name"`
	Players   []player.Player `json:"players,omitempty"`
	PlayerIDs []string        `json:"playerIds,omitempty"`
	Size      int             `json:"size,omitempty"`
}

type advanceRequest struct {
	MatchID  string `json:"matchId"`
	WinnerID string `json:"winnerId"`
	Version  *int   `json:"version,omitempty"`
}

type scheduleLeagueRequest struct {
	Name      string   `json:"name,omitempty"`
	PlayerIDs []string `json:"playerIds"`
	Weeks     int      `json:"weeks"`
}

type updateRatingsRequest struct {
	Ratings   map[string]int `json:"ratings"`
	WinnerIDs []string       `json:"winnerIds"`
	LoserIDs  []string       `json:"loserIds"`
}

type updateRatingsResponse struct {
	Ratings map[string]int    `json:"ratings"`
	Ranks   map[string]string `json:"ranks"`
}

type recordResultRequest struct {
	ResultID     string             `json:"resultId,omitempty"`
	WinnerIDs    []string           `json:"winnerIds"`
	LoserIDs     []string           `json:"loserIds"`
	Performances map[string]float64 `json:"performances,omitempty"`
	PlayedAt     time.Time          `json:"playedAt,omitempty"`
}

type recordResultResponse struct {
	ResultID  string              `json:"resultId"`
	Duplicate bool                `json:"duplicate"`
	Changes   []club.RatingChange `json:"changes"`
}
