package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchRequests(engine string)
	IncMatchesFound(engine string)
	ObserveMatchDuration(engine string, seconds float64)
	IncBracketsCreated()
	IncBracketAdvances()
	IncLeaguesScheduled()
	IncRatingUpdates(players int)
	IncPersistenceFailures(op string)
	IncNotificationsSent()
	IncNotificationsFailed()
	SetStartupTime(duration float64)
}

// MetricsStore keeps lifetime counters in the database so they survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
