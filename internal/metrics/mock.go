package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	matchRequests       map[string]int
	matchesFound        map[string]int
	matchDurations      []float64
	bracketsCreated     int
	bracketAdvances     int
	leaguesScheduled    int
	ratingUpdates       int
	persistenceFailures map[string]int
	notificationsSent   int
	notificationsFailed int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		matchRequests:       make(map[string]int),
		matchesFound:        make(map[string]int),
		matchDurations:      make([]float64, 0),
		persistenceFailures: make(map[string]int),
	}
}

func (m *Mock) IncMatchRequests(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchRequests[engine]++
}

func (m *Mock) IncMatchesFound(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesFound[engine]++
}

func (m *Mock) ObserveMatchDuration(_ string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchDurations = append(m.matchDurations, seconds)
}

func (m *Mock) IncBracketsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketsCreated++
}

func (m *Mock) IncBracketAdvances() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketAdvances++
}

func (m *Mock) IncLeaguesScheduled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaguesScheduled++
}

func (m *Mock) IncRatingUpdates(players int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingUpdates += players
}

func (m *Mock) IncPersistenceFailures(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistenceFailures[op]++
}

func (m *Mock) IncNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent++
}

func (m *Mock) IncNotificationsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchRequests returns how often IncMatchRequests was called for engine.
func (m *Mock) MatchRequests(engine string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchRequests[engine]
}

// MatchesFound returns how often IncMatchesFound was called for engine.
func (m *Mock) MatchesFound(engine string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesFound[engine]
}

// MatchDurations returns every observed duration.
func (m *Mock) MatchDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.matchDurations...)
}

func (m *Mock) BracketsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketsCreated
}

func (m *Mock) BracketAdvances() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketAdvances
}

func (m *Mock) LeaguesScheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaguesScheduled
}

// RatingUpdates returns the total number of player ratings reported as changed.
func (m *Mock) RatingUpdates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingUpdates
}

// PersistenceFailures returns how often IncPersistenceFailures was called for op.
func (m *Mock) PersistenceFailures(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistenceFailures[op]
}

func (m *Mock) NotificationsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent
}

func (m *Mock) NotificationsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed
}

func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
