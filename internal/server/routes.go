package server

import (
	"log/slog"
	"net/http"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/middleware"
	"clanstats-server/internal/period"
	periodHandlers "clanstats-server/internal/period/handlers"
	"clanstats-server/internal/player"
	playerHandlers "clanstats-server/internal/player/handlers"
	serverHandlers "clanstats-server/internal/server/handlers"
	"clanstats-server/internal/shared/config"
	"clanstats-server/internal/shared/database"
	"clanstats-server/internal/stats"
	statsHandlers "clanstats-server/internal/stats/handlers"
	"clanstats-server/internal/user"
	userHandlers "clanstats-server/internal/user/handlers"
)

type Routes struct {
	db            *database.DB
	userService   *user.Service
	playerService *player.Service
	periodService *period.Service
	statsService  *stats.Service
	logger        *slog.Logger
}

func NewRoutes(
	db *database.DB,
	userService *user.Service,
	playerService *player.Service,
	periodService *period.Service,
	statsService *stats.Service,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:            db,
		userService:   userService,
		playerService: playerService,
		periodService: periodService,
		statsService:  statsService,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	authHandler := userHandlers.NewAuthHandler(r.userService)
	playersHandler := playerHandlers.NewPlayersHandler(r.playerService)
	periodsHandler := periodHandlers.NewPeriodsHandler(r.periodService)
	statisticsHandler := statsHandlers.NewStatisticsHandler(r.statsService)

	// Auth
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/registro", authHandler.Register)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/verificar", middleware.JWTMiddleware(http.HandlerFunc(authHandler.Verify)))
	mux.Handle("POST /api/auth/usuarios", middleware.Require(auth.OpManageUsers, http.HandlerFunc(authHandler.CreateUser)))
	mux.Handle("GET /api/auth/usuarios", middleware.Require(auth.OpManageUsers, http.HandlerFunc(authHandler.ListUsers)))
	mux.Handle("PUT /api/auth/usuarios/{id}/rol", middleware.Require(auth.OpManageUsers, http.HandlerFunc(authHandler.ChangeRole)))

	// Periods
	mux.HandleFunc("GET /api/periods/activo", periodsHandler.GetActive)
	mux.HandleFunc("GET /api/periods", periodsHandler.List)
	mux.Handle("POST /api/periods", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(periodsHandler.Create)))
	mux.Handle("PUT /api/periods/{id}/guerras", middleware.Require(auth.OpManageWars, http.HandlerFunc(periodsHandler.UpdateWars)))

	// Players
	mux.HandleFunc("GET /api/players", playersHandler.List)
	mux.Handle("POST /api/players", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(playersHandler.Create)))
	mux.Handle("PUT /api/players/{id}", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(playersHandler.Update)))
	mux.Handle("DELETE /api/players/{id}", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(playersHandler.Delete)))

	// Statistics
	mux.HandleFunc("GET /api/statistics", statisticsHandler.List)
	mux.Handle("PUT /api/statistics/{id}", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(statisticsHandler.Update)))
	mux.Handle("DELETE /api/statistics/{id}", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(statisticsHandler.Delete)))
	mux.Handle("POST /api/statistics/importar", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(statisticsHandler.Import)))
	mux.Handle("POST /api/statistics/agregar", middleware.Require(auth.OpEditStatistics, http.HandlerFunc(statisticsHandler.AddPlayer)))
	mux.Handle("GET /api/statistics/historial", middleware.Require(auth.OpViewHistory, http.HandlerFunc(statisticsHandler.History)))

	// Server
	mux.Handle("GET /api/health", healthHandler)

	// Static frontend
	staticDir := config.GlobalConfig.Frontend.StaticDir
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/statistics", "/api/players", "/api/periods", "/api/periods/activo", "/api/health"},
		"gated_endpoints", []string{"/api/statistics/*", "/api/periods/*", "/api/auth/usuarios*", "/api/statistics/historial"},
		"static_dir", staticDir,
	)

	return mux
}
