package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/reelduel/matchmaking/internal/config"
	"github.com/reelduel/matchmaking/internal/database"
	"github.com/reelduel/matchmaking/internal/handler"
	"github.com/reelduel/matchmaking/internal/matchmaking"
	"github.com/reelduel/matchmaking/internal/middleware"
	"github.com/reelduel/matchmaking/internal/notify"
	"github.com/reelduel/matchmaking/internal/queue"
	"github.com/reelduel/matchmaking/internal/repository"
	"github.com/reelduel/matchmaking/internal/router"
	handoff "github.com/reelduel/matchmaking/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded; relying on process environment")
	}
	cfg := config.Load() // Load environment config

	// MySQL: the queue store and session handoff tables.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	// Redis: realtime notification channel + rate limiting. A nil
	// client degrades to polling-only with no rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: realtime notifications and rate limiting disabled")
	}
	notifier := notify.NewNotifier(rdb)

	svc := matchmaking.NewService(db, notifier, handoff.PublishSessionCreated, matchmaking.Config{
		SearchTimeout:      cfg.SearchTimeout,
		TolerancePerSecond: cfg.TolerancePerSecond,
		ToleranceCap:       cfg.ToleranceCap,
		Retention:          cfg.Retention,
	})

	// Background expiry sweeper: tickets must time out even when the
	// queue goes quiet and no enqueue sweeps opportunistically.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go svc.RunSweeper(sweepCtx, cfg.SweepInterval)

	// Session handoff audit consumer (stand-in for the gameplay service).
	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("session consumer stopped: %v", err)
		}
	}()

	participants := repository.NewParticipantRepo(db)
	guestHandler := handler.NewGuestHandler(participants, cfg.JWTSecret, cfg.GuestTokenTTLHours)
	mmHandler := handler.NewMatchmakingHandler(svc)
	wsHandler := handler.NewWSHandler(notifier)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e, guestHandler, mmHandler)
	router.RegisterMatchmaking(e, mmHandler, wsHandler, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
	if err := e.Start(addr); err != nil {                 // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
