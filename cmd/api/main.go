package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"real-estate-marketplace/internal/auth"
	"real-estate-marketplace/internal/cleanup"
	"real-estate-marketplace/internal/config"
	"real-estate-marketplace/internal/database"
	"real-estate-marketplace/internal/handlers"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/listing"
	"real-estate-marketplace/internal/ratelimit"
	"real-estate-marketplace/internal/recommend"
	"real-estate-marketplace/internal/savedsearch"
	"real-estate-marketplace/internal/scheduler"
	"real-estate-marketplace/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	configPath := getEnv("CONFIG_PATH", "config/app.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Warn("config load failed, using defaults", "path", configPath, "error", err)
		appConfig = config.DefaultConfig()
	}

	logger := newLogger(appConfig.Logging.Level)
	slog.SetDefault(logger)

	gormDB, err := database.NewGormDB(
		getEnvOrConfig(appConfig.Database.Host, "DB_HOST", "mysql"),
		getEnvIntOrConfig(appConfig.Database.Port, "DB_PORT", 3306),
		getEnvOrConfig(appConfig.Database.User, "DB_USER", "marketplace_user"),
		getEnvOrConfig(appConfig.Database.Password, "DB_PASSWORD", "marketplace_pass"),
		getEnvOrConfig(appConfig.Database.Database, "DB_NAME", "marketplace_db"),
	)
	if err != nil {
		logger.Error("mysql connection failed", "error", err)
		os.Exit(1)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		logger.Error("schema init failed", "error", err)
		os.Exit(1)
	}
	db := gormDB.DB()

	// Suggest sidecar is optional: a down Meilisearch degrades suggestions
	// to empty lists and never blocks startup.
	suggest := search.NewSuggestClient(
		getEnvOrConfig(appConfig.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700"),
		getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_API_KEY", ""),
	)
	if err := suggest.InitIndex(); err != nil {
		logger.Warn("suggest index init failed, suggestions degraded", "error", err)
	}

	executor := search.NewExecutor(search.NewGormBackend(db), logger)
	facetEngine := search.NewFacetEngine(db, logger)
	historyService := history.NewService(db, logger)
	listingService := listing.NewService(db, historyService, logger)
	searchStore := savedsearch.NewStore(db, executor, logger)
	recommendEngine := recommend.NewEngine(db, executor, logger)
	cleanupService := cleanup.NewService(db, logger)

	sched := scheduler.NewScheduler(searchStore, listingService, appConfig, logger)
	if err := sched.Start(); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	limiter := ratelimit.NewLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.Burst,
		appConfig.RateLimit.Enabled,
	)

	jwtSecret := getEnvOrConfig(appConfig.Auth.JWTSecret, "JWT_SECRET", "")
	if jwtSecret == "" {
		logger.Error("JWT secret is not configured")
		os.Exit(1)
	}

	searchHandler := handlers.NewSearchHandler(executor, facetEngine, suggest, logger)
	listingHandler := handlers.NewListingHandler(listingService, suggest, logger)
	savedHandler := handlers.NewSavedSearchHandler(searchStore, recommendEngine, logger)
	adminHandler := handlers.NewAdminHandler(db, sched, historyService, cleanupService, suggest, limiter, logger)

	r := gin.Default()

	allowedOrigins := appConfig.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public search surface
	public := r.Group("/api", limiter.Middleware())
	{
		public.GET("/listings", searchHandler.Search)
		public.GET("/listings/facets", searchHandler.Facets)
		public.GET("/listings/suggest", searchHandler.Suggest)
		public.GET("/listings/:id", listingHandler.Get)
		public.POST("/listings/:id/track", listingHandler.Track)
	}

	// Authenticated surface
	authed := r.Group("/api", limiter.Middleware(), auth.Middleware(jwtSecret))
	{
		authed.POST("/listings", listingHandler.Create)
		authed.PATCH("/listings/:id/status", listingHandler.ChangeStatus)
		authed.PATCH("/listings/:id/price", listingHandler.UpdatePrice)
		authed.GET("/me/listings", listingHandler.MyListings)

		authed.POST("/saved-searches", savedHandler.Create)
		authed.GET("/saved-searches", savedHandler.List)
		authed.POST("/saved-searches/:id/execute", savedHandler.Execute)
		authed.POST("/saved-searches/:id/deactivate", savedHandler.Deactivate)
		authed.DELETE("/saved-searches/:id", savedHandler.Delete)

		authed.GET("/recommendations", savedHandler.Recommendations)
	}

	// Admin surface
	admin := r.Group("/api/admin", auth.Middleware(jwtSecret), auth.RequireAdmin())
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/moderation/queue", adminHandler.GetModerationQueue)
		admin.GET("/changes/recent", adminHandler.GetRecentChanges)
		admin.POST("/cleanup/run", adminHandler.RunCleanup)
		admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)
		admin.POST("/sweep/run", adminHandler.TriggerSweep)
		admin.POST("/suggest/reindex", adminHandler.ReindexSuggest)
	}

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	logger.Info("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process-wide structured logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns the config value if set, otherwise falls back to
// the environment variable, then the default.
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

func getEnvIntOrConfig(configValue int, envKey string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	if value := os.Getenv(envKey); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
