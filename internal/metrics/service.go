package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rallyrank_match_requests_total",
			Help: "The total number of matchmaking requests, by engine.",
		}, []string{"engine"}),
		MatchesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rallyrank_matches_found_total",
			Help: "The total number of matchmaking requests that produced a match, by engine.",
		}, []string{"engine"}),
		MatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rallyrank_match_duration_seconds",
			Help:    "The duration of matchmaking computations, by engine.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"engine"}),
		BracketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rallyrank_brackets_created_total",
			Help: "The total number of tournament brackets created.",
		}),
		BracketAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rallyrank_bracket_advances_total",
			Help: "The total number of bracket matches decided.",
		}),
		LeaguesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rallyrank_leagues_scheduled_total",
			Help: "The total number of league schedules generated.",
		}),
		RatingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rallyrank_rating_updates_total",
			Help: "The total number of player ratings changed by recorded results.",
		}),
		PersistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rallyrank_persistence_failures_total",
			Help: "The total number of failed storage operations, by operation.",
		}, []string{"op"}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rallyrank_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rallyrank_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rallyrank_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchRequests,
		s.MatchesFound,
		s.MatchDuration,
		s.BracketsCreated,
		s.BracketAdvances,
		s.LeaguesScheduled,
		s.RatingUpdates,
		s.PersistenceFailures,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchRequests(engine string) {
	s.MatchRequests.WithLabelValues(engine).Inc()
}

func (s *Service) IncMatchesFound(engine string) {
	s.MatchesFound.WithLabelValues(engine).Inc()
}

func (s *Service) ObserveMatchDuration(engine string, seconds float64) {
	s.MatchDuration.WithLabelValues(engine).Observe(seconds)
}

func (s *Service) IncBracketsCreated() {
	s.BracketsCreated.Inc()
}

func (s *Service) IncBracketAdvances() {
	s.BracketAdvances.Inc()
}

func (s *Service) IncLeaguesScheduled() {
	s.LeaguesScheduled.Inc()
}

func (s *Service) IncRatingUpdates(players int) {
	s.RatingUpdates.Add(float64(players))
}

func (s *Service) IncPersistenceFailures(op string) {
	s.PersistenceFailures.WithLabelValues(op).Inc()
}

func (s *Service) IncNotificationsSent() {
	s.NotificationsSent.Inc()
}

func (s *Service) IncNotificationsFailed() {
	s.NotificationsFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
