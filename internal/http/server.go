package http

import (
	"net/http"

	"github.com/mauv0809/rallyrank/internal/config"
	"github.com/mauv0809/rallyrank/internal/processor"
)

func NewServer(proc *processor.Processor, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Processor:      proc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))

	s.Router.Handle("POST /match", Chain(s.FindMatchHandler(), paramsMiddleware))

	s.Router.Handle("POST /bracket", Chain(s.CreateBracketHandler(), paramsMiddleware))
	s.Router.Handle("GET /bracket/{id}", Chain(s.GetBracketHandler(), paramsMiddleware))
	s.Router.Handle("POST /bracket/{id}/advance", Chain(s.AdvanceBracketHandler(), paramsMiddleware))

	s.Router.Handle("POST /league/schedule", Chain(s.ScheduleLeagueHandler(), paramsMiddleware))
	s.Router.Handle("GET /league/{id}", Chain(s.GetLeagueHandler(), paramsMiddleware))

	s.Router.Handle("POST /rating/update", Chain(s.UpdateRatingsHandler(), paramsMiddleware))
	s.Router.Handle("POST /rating/result", Chain(s.RecordResultHandler(), paramsMiddleware))
	s.Router.Handle("POST /pubsub/match-completed", Chain(s.MatchCompletedPushHandler(), paramsMiddleware))

	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("POST /players", Chain(s.UpsertPlayersHandler(), paramsMiddleware))
	s.Router.Handle("POST /players/sync", Chain(s.SyncPlayersHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/history", Chain(s.PlayerHistoryHandler(), paramsMiddleware))

	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("POST /leaderboard/post", Chain(s.PostLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("POST /slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
