package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"clanstats-server/internal/history"
	"clanstats-server/internal/middleware"
	"clanstats-server/internal/period"
	"clanstats-server/internal/player"
	"clanstats-server/internal/server"
	"clanstats-server/internal/shared/config"
	"clanstats-server/internal/shared/database"
	"clanstats-server/internal/shared/logger"
	"clanstats-server/internal/shared/redis"
	"clanstats-server/internal/stats"
	"clanstats-server/internal/user"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatal("Failed to initialize configuration:", err)
	}

	logger.Init()
	cfg := config.GlobalConfig

	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		// The cache is an optimization; a broken Redis should not keep
		// the clan from recording war results.
		slog.Warn("Continuing without statistics cache", "error", err)
		redisClient = nil
	}
	defer redisClient.Close()

	appLogger := slog.Default()

	historyRepo := history.NewRepository(db)
	userRepo := user.NewRepository(db)
	playerRepo := player.NewRepository(db)
	periodRepo := period.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	statsCache := stats.NewCache(redisClient)

	userService := user.NewService(userRepo, historyRepo, appLogger)
	playerService := player.NewService(playerRepo, periodRepo, statsCache, appLogger)
	periodService := period.NewService(periodRepo, statsCache, appLogger)
	statsService := stats.NewService(statsRepo, periodRepo, playerRepo, historyRepo, statsCache, appLogger)

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = userService.EnsureLeader(bootstrapCtx,
		cfg.Bootstrap.LeaderUsername,
		cfg.Bootstrap.LeaderPassword,
		cfg.Bootstrap.LeaderName,
	)
	cancel()
	if err != nil {
		log.Fatal("Failed to bootstrap leader account:", err)
	}

	routes := server.NewRoutes(db, userService, playerService, periodService, statsService, appLogger)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
		TrustProxy:        cfg.Server.Environment == "production",
	})
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	slog.Info("Clan statistics server starting",
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
	)
	log.Fatal(srv.ListenAndServe())
}
