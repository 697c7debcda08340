package config

import "github.com/mauv0809/rallyrank/internal/matchmaking"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	TenantID      string
	Turso         TursoConfig
	ProjectID     string
	Engine        EngineConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether Slack notifications can be delivered.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// EngineConfig holds the tunables of the rating and matching engines.
type EngineConfig struct {
	KFactor     int
	DefaultElo  int
	Thresholds  matchmaking.Thresholds
	BracketSeed uint64
}
