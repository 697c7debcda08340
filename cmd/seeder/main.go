package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/database"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/rating"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "rallyrank.db",
		"MIGRATIONS_DIR":    "./migrations",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
		"SEED_PLAYERS":      "24",
		"SEED_RESULTS":      "500",
		"ELO_K_FACTOR":      strconv.Itoa(rating.DefaultKFactor),
		"ELO_DEFAULT":       strconv.Itoa(rating.DefaultElo),
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func intSetting(cfg map[string]string, key string) int {
	v, err := strconv.Atoi(cfg[key])
	if err != nil || v < 4 {
		log.Fatalf("Error: %s must be an integer of at least 4, got '%s'", key, cfg[key])
	}
	return v
}

var (
	cities  = []string{"Copenhagen", "Aarhus", "Odense"}
	genders = []player.Gender{player.GenderMale, player.GenderFemale, player.GenderMixed}
	windows = []player.Availability{player.AvailabilityWeekdays, player.AvailabilityWeekends, player.AvailabilityBoth}
)

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()
	numPlayers := intSetting(cfg, "SEED_PLAYERS")
	numResults := intSetting(cfg, "SEED_RESULTS")

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	ratings := rating.New(intSetting(cfg, "ELO_K_FACTOR"), intSetting(cfg, "ELO_DEFAULT"))
	store := club.New(db, ratings.DefaultElo)
	ctx := context.Background()

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	players := make([]player.Player, numPlayers)
	for i := range players {
		players[i] = player.Player{
			ID:           fmt.Sprintf("seed-player-%d", i+1),
			DisplayName:  fmt.Sprintf("Seeder Player %d", i+1),
			Sport:        "padel",
			City:         cities[rng.IntN(len(cities))],
			Gender:       genders[rng.IntN(len(genders))],
			SkillRating:  float64(rng.IntN(57)+10) / 10,
			EloRating:    0,
			Availability: windows[rng.IntN(len(windows))],
		}
	}
	if err := store.UpsertPlayers(ctx, players); err != nil {
		log.Fatalf("Failed to insert seed players: %s", err)
	}
	log.Info("Ensured seed players exist.", "count", numPlayers)

	log.Info("Preparing to record seed results...", "total", numResults)
	startTime := time.Now()
	for i := 0; i < numResults; i++ {
		perm := rng.Perm(numPlayers)[:4]
		ids := make([]string, 4)
		for j, p := range perm {
			ids[j] = players[p].ID
		}
		result := club.MatchResult{
			ID:        uuid.NewString(),
			WinnerIDs: ids[:2],
			LoserIDs:  ids[2:],
			Performances: map[string]float64{
				ids[0]: float64(rng.IntN(5) + 1),
				ids[1]: float64(rng.IntN(5) + 1),
				ids[2]: float64(rng.IntN(5) + 1),
				ids[3]: float64(rng.IntN(5) + 1),
			},
			PlayedAt: time.Now().Add(-time.Duration(rng.IntN(365*24)) * time.Hour),
		}
		_, err := store.RecordMatchResult(ctx, result, func(current map[string]int) (map[string]int, error) {
			return ratings.ProcessTeamResult(current, result.WinnerIDs, result.LoserIDs)
		})
		if err != nil {
			log.Fatalf("Failed to record seed result %d: %s", i+1, err)
		}
		if (i+1)%100 == 0 {
			log.Info("Recorded batch", "completed", i+1, "total", numResults)
		}
	}

	duration := time.Since(startTime)
	log.Info("Successfully recorded all seed results.", "duration", duration)
}
