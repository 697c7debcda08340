package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/club"
	"github.com/mauv0809/rallyrank/internal/config"
	"github.com/mauv0809/rallyrank/internal/database"
	server "github.com/mauv0809/rallyrank/internal/http"
	"github.com/mauv0809/rallyrank/internal/league"
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/metrics"
	"github.com/mauv0809/rallyrank/internal/notifier/slack"
	"github.com/mauv0809/rallyrank/internal/playtomic"
	"github.com/mauv0809/rallyrank/internal/processor"
	"github.com/mauv0809/rallyrank/internal/pubsub"
	"github.com/mauv0809/rallyrank/internal/rating"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	pubsubClient, pubsubTeardown, err := pubsub.New(context.Background(), cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer pubsubTeardown()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	ratings := rating.New(cfg.Engine.KFactor, cfg.Engine.DefaultElo)

	proc := processor.New(processor.Deps{
		Store:     club.New(db, ratings.DefaultElo),
		Brackets:  bracket.NewStore(db),
		Leagues:   league.NewStore(db),
		PubSub:    pubsubClient,
		Notifier:  notifier,
		Metrics:   metricsSvc,
		Counters:  metrics.New(db),
		Playtomic: playtomic.NewClient(),
		Ratings:   ratings,
		Finders: processor.Finders{
			Basic:    matchmaking.NewScorer(cfg.Engine.Thresholds),
			Enhanced: matchmaking.NewEngine(ratings, cfg.Engine.Thresholds),
		},
		BracketEngine: bracket.NewEngine(ratings, cfg.Engine.BracketSeed),
		TenantID:      cfg.TenantID,
	})

	s := server.NewServer(proc, metricsHandler, cfg)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "slack", cfg.Slack.Enabled(), "pubsub", cfg.ProjectID != "")
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
