package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	MatchRequests       *prometheus.CounterVec
	MatchesFound        *prometheus.CounterVec
	MatchDuration       *prometheus.HistogramVec
	BracketsCreated     prometheus.Counter
	BracketAdvances     prometheus.Counter
	LeaguesScheduled    prometheus.Counter
	RatingUpdates       prometheus.Counter
	PersistenceFailures *prometheus.CounterVec
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}

// Engine labels.
const (
	EngineBasic    = "basic"
	EngineEnhanced = "enhanced"
)
