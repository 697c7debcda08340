package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(lookupFrom(map[string]string{"DB_NAME": "rallyrank.db", "PORT": "8080"}))
	require.NoError(t, err)

	assert.Equal(t, "rallyrank.db", cfg.DBName)
	assert.Equal(t, "./migrations", cfg.MigrationsDir)
	assert.Equal(t, 32, cfg.Engine.KFactor)
	assert.Equal(t, 1500, cfg.Engine.DefaultElo)
	assert.Equal(t, 70.0, cfg.Engine.Thresholds.ScorerFound)
	assert.Equal(t, 75.0, cfg.Engine.Thresholds.Quality)
	assert.Equal(t, 60.0, cfg.Engine.Thresholds.Secondary)
	assert.Equal(t, 1.0, cfg.Engine.Thresholds.SkillGate)
	assert.Equal(t, uint64(0), cfg.Engine.BracketSeed)
	assert.False(t, cfg.Slack.Enabled())
	assert.Empty(t, cfg.ProjectID)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(lookupFrom(map[string]string{
		"DB_NAME":                 "x.db",
		"PORT":                    "9000",
		"ELO_K_FACTOR":            "24",
		"MATCH_QUALITY_THRESHOLD": "80.5",
		"MATCH_SKILL_GATE":        "0.5",
		"BRACKET_SEED":            "42",
		"SLACK_BOT_TOKEN":         "xoxb-1",
		"SLACK_CHANNEL_ID":        "C1",
		"TURSO_PRIMARY_URL":       "libsql://club.turso.io",
	}))
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Engine.KFactor)
	assert.Equal(t, 80.5, cfg.Engine.Thresholds.Quality)
	assert.Equal(t, 0.5, cfg.Engine.Thresholds.SkillGate)
	assert.Equal(t, uint64(42), cfg.Engine.BracketSeed)
	assert.True(t, cfg.Slack.Enabled())
	assert.Equal(t, "libsql://club.turso.io", cfg.Turso.PrimaryURL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{"missing required", map[string]string{"PORT": "8080"}, "DB_NAME"},
		{"bad integer", map[string]string{"DB_NAME": "x", "PORT": "1", "ELO_K_FACTOR": "lots"}, "ELO_K_FACTOR"},
		{"bad number", map[string]string{"DB_NAME": "x", "PORT": "1", "MATCH_FOUND_AVERAGE": "high"}, "MATCH_FOUND_AVERAGE"},
		{"inverted bands", map[string]string{"DB_NAME": "x", "PORT": "1", "MATCH_SECONDARY_THRESHOLD": "90"}, "must not exceed"},
		{"negative skill gate", map[string]string{"DB_NAME": "x", "PORT": "1", "MATCH_SKILL_GATE": "-1"}, "MATCH_SKILL_GATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(lookupFrom(tt.env))
			assert.ErrorContains(t, err, tt.message)
		})
	}
}
