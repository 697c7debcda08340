package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/rating"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

// Parse builds a Config from lookup. DB_NAME and PORT are required; everything else is optional.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	var errs []error
	required := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		errs = append(errs, fmt.Errorf("required environment variable %s is not set", key))
		return ""
	}
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	intVar := func(key string, fallback int) int {
		raw := optional(key, "")
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("env var %s: expected integer, got '%s'", key, raw))
			return fallback
		}
		return v
	}
	floatVar := func(key string, fallback float64) float64 {
		raw := optional(key, "")
		if raw == "" {
			return fallback
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("env var %s: expected number, got '%s'", key, raw))
			return fallback
		}
		return v
	}

	defaults := matchmaking.DefaultThresholds()
	cfg := Config{
		DBName:        required("DB_NAME"),
		MigrationsDir: optional("MIGRATIONS_DIR", "./migrations"),
		Port:          required("PORT"),
		Slack: SlackConfig{
			Token:     optional("SLACK_BOT_TOKEN", ""),
			ChannelID: optional("SLACK_CHANNEL_ID", ""),
		},
		TenantID: optional("PLAYTOMIC_TENANT_ID", ""),
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: optional("GCP_PROJECT", ""),
		Engine: EngineConfig{
			KFactor:    intVar("ELO_K_FACTOR", rating.DefaultKFactor),
			DefaultElo: intVar("ELO_DEFAULT", rating.DefaultElo),
			Thresholds: matchmaking.Thresholds{
				ScorerFound:  floatVar("MATCH_FOUND_THRESHOLD", defaults.ScorerFound),
				SkillGate:    floatVar("MATCH_SKILL_GATE", defaults.SkillGate),
				Quality:      floatVar("MATCH_QUALITY_THRESHOLD", defaults.Quality),
				Secondary:    floatVar("MATCH_SECONDARY_THRESHOLD", defaults.Secondary),
				FoundAverage: floatVar("MATCH_FOUND_AVERAGE", defaults.FoundAverage),
			},
			BracketSeed: uint64(intVar("BRACKET_SEED", 0)),
		},
	}
	if cfg.Engine.Thresholds.SkillGate < 0 {
		errs = append(errs, fmt.Errorf("MATCH_SKILL_GATE (%v) must not be negative", cfg.Engine.Thresholds.SkillGate))
	}
	if cfg.Engine.Thresholds.Secondary > cfg.Engine.Thresholds.Quality {
		errs = append(errs, fmt.Errorf("MATCH_SECONDARY_THRESHOLD (%v) must not exceed MATCH_QUALITY_THRESHOLD (%v)",
			cfg.Engine.Thresholds.Secondary, cfg.Engine.Thresholds.Quality))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}
