package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/processor"
	"github.com/mauv0809/rallyrank/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Processor.Stats()
		if err != nil {
			writeError(w, "Failed to load counters", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// FindMatchHandler runs the basic scorer, or the enhanced engine when a matchType is given.
func (s *Server) FindMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if req.MatchType == "" {
			result, err := s.Processor.FindMatches(r.Context(), processor.MatchRequest{
				Pool:         req.Pool,
				InitiatorID:  req.InitiatorID,
				DesiredCount: req.DesiredCount,
				Constraints:  matchmaking.Constraints{Gender: req.Gender, City: req.City},
			})
			if err != nil {
				writeError(w, "Failed to find matches", err)
				return
			}
			writeJSON(w, http.StatusOK, result)
			return
		}

		mt, err := matchmaking.ParseMatchType(req.MatchType)
		if err != nil {
			writeError(w, "Invalid match type", err)
			return
		}
		result, err := s.Processor.FindEnhancedMatches(r.Context(), matchmaking.EnhancedRequest{
			Pool:         req.Pool,
			Sport:        req.Sport,
			City:         req.City,
			SkillLevel:   req.SkillLevel,
			Gender:       req.Gender,
			InitiatorID:  req.InitiatorID,
			DesiredCount: req.DesiredCount,
			MatchType:    mt,
			Trends:       req.Trends,
		})
		if err != nil {
			writeError(w, "Failed to find matches", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) CreateBracketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBracketRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		b, err := s.Processor.CreateBracket(r.Context(), processor.BracketRequest{
			Name:      req.Name,
			Pool:      req.Players,
			PlayerIDs: req.PlayerIDs,
			Size:      req.Size,
		}, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to create bracket", err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func (s *Server) GetBracketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := s.Processor.GetBracket(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, "Failed to load bracket", err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func (s *Server) AdvanceBracketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req advanceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.MatchID == "" || req.WinnerID == "" {
			http.Error(w, "matchId and winnerId are required", http.StatusBadRequest)
			return
		}
		b, err := s.Processor.AdvanceBracket(r.Context(), r.PathValue("id"), req.MatchID, req.WinnerID, req.Version, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to advance bracket", err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func (s *Server) ScheduleLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleLeagueRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		l, err := s.Processor.ScheduleLeague(r.Context(), req.Name, req.PlayerIDs, req.Weeks, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to schedule league", err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func (s *Server) GetLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := s.Processor.GetLeague(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, "Failed to load league", err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// UpdateRatingsHandler rates a result without touching the database.
func (s *Server) UpdateRatingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRatingsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ratings, ranks, err := s.Processor.UpdateRatings(req.Ratings, req.WinnerIDs, req.LoserIDs)
		if err != nil {
			writeError(w, "Failed to update ratings", err)
			return
		}
		writeJSON(w, http.StatusOK, updateRatingsResponse{Ratings: ratings, Ranks: ranks})
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordResultRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result := club.MatchResult{
			ID:           req.ResultID,
			WinnerIDs:    req.WinnerIDs,
			LoserIDs:     req.LoserIDs,
			Performances: req.Performances,
			PlayedAt:     req.PlayedAt,
		}
		recorded, err := s.Processor.RecordResult(r.Context(), result, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to record result", err)
			return
		}
		resultID := req.ResultID
		if len(recorded.Changes) > 0 {
			resultID = recorded.Changes[0].ResultID
		}
		status := http.StatusCreated
		if recorded.Duplicate {
			status = http.StatusOK
		}
		writeJSON(w, status, recordResultResponse{ResultID: resultID, Duplicate: recorded.Duplicate, Changes: recorded.Changes})
	}
}

// MatchCompletedPushHandler receives match-completed events from a Pub/Sub push subscription.
// Payloads that can never succeed are acknowledged so Pub/Sub stops redelivering them.
func (s *Server) MatchCompletedPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := pubsub.DecodePush(r.Body)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, err = s.Processor.HandleMatchCompleted(r.Context(), rawData, isDryRunFromContext(r))
		var invalidWinner *apperr.InvalidWinnerError
		switch {
		case err == nil:
		case apperr.IsValidation(err), errors.Is(err, apperr.ErrNotFound), errors.As(err, &invalidWinner):
			log.Warn("Dropping unprocessable match-completed event", "error", err)
		default:
			writeError(w, "Failed to process match-completed event", err)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Processor.Players(r.Context())
		if err != nil {
			writeError(w, "Failed to list players", err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) UpsertPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var players []player.Player
		if !decodeJSON(w, r, &players) {
			return
		}
		if err := s.Processor.UpsertPlayers(r.Context(), players, isDryRunFromContext(r)); err != nil {
			writeError(w, "Failed to upsert players", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"upserted": len(players)})
	}
}

// SyncPlayersHandler imports players and results from Playtomic.
// ?days=N looks back N days (default 7), ?city= sets the city of new players (default: the club name).
func (s *Server) SyncPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if daysStr := r.URL.Query().Get("days"); daysStr != "" {
			parsed, err := strconv.Atoi(daysStr)
			if err != nil || parsed < 0 {
				http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
				return
			}
			days = parsed
		}
		since := time.Now().AddDate(0, 0, -days)
		summary, err := s.Processor.SyncPlaytomic(r.Context(), since, r.URL.Query().Get("city"), isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to sync from Playtomic", err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) PlayerHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		history, err := s.Processor.PlayerHistory(r.Context(), r.PathValue("id"), limit)
		if err != nil {
			writeError(w, "Failed to load rating history", err)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Processor.Leaderboard(r.Context())
		if err != nil {
			writeError(w, "Failed to load leaderboard", err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) PostLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Processor.PostLeaderboard(r.Context(), isDryRunFromContext(r)); err != nil {
			writeError(w, "Failed to post leaderboard", err)
			return
		}
		w.Write([]byte("OK"))
	}
}

// LeaderboardCommandHandler answers the /leaderboard Slack slash command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := s.Processor.LeaderboardResponse(r.Context())
		if err != nil {
			writeError(w, "Failed to format leaderboard", err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}
