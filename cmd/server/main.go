package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hooplens/internal/api"
	"hooplens/internal/api/handlers"
	"hooplens/internal/api/middleware"
	"hooplens/internal/nba"
	"hooplens/internal/providers"
	"hooplens/internal/services"
	"hooplens/pkg/blobstore"
	"hooplens/pkg/config"
	"hooplens/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	store, cleanup, err := buildStore(cfg, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize cache store: %v", err)
	}
	defer cleanup()

	provider := providers.NewNBAStatsClient(logger, providers.ClientOptions{
		Timeout:          cfg.ProviderTimeout,
		RequestsPerSec:   cfg.ProviderRate,
		Burst:            cfg.ProviderBurst,
		BreakerThreshold: cfg.BreakerThreshold,
	})
	retry := providers.RetryPolicy{Attempts: cfg.ProviderRetries, Backoff: cfg.ProviderBackoff}

	registry := nba.NewRegistry()
	cache := services.NewCacheService(store, logger)
	rosters := services.NewRosterService(provider, registry, cache, retry, logger)
	games := services.NewGameService(provider, cache, retry, logger)
	boxscores := services.NewBoxscoreService(provider, cache, retry, logger)
	defCache := services.NewTeamDefenseCache(cache)
	defense := services.NewDefenseService(registry, rosters, games, boxscores, defCache, logger)
	possession := services.NewPossessionService(provider, registry, games, boxscores, cache, retry, logger)
	baseline := services.NewBaselineService(registry, possession, cache, logger)
	forms := services.NewFormService(provider, retry, logger)
	matchups := services.NewMatchupService(registry, rosters, forms, possession, baseline, cfg.MinutesFloor, logger)
	schedule := services.NewScheduleService(provider, registry, retry, logger)
	warmer := services.NewCacheWarmer(defense, defCache, registry, logger)

	defaults := handlers.Defaults{
		Season:      cfg.DefaultSeason,
		RoleMode:    nba.ParseRoleMode(cfg.DefaultRoleMode),
		SeasonTypes: nba.ParseSeasonTypes(cfg.DefaultSeasonTypes),
		ExcludeDNP:  cfg.DefaultExcludeDNP,
	}
	defaultFilters := nba.DefenseFilters{
		Season:      defaults.Season,
		RoleMode:    defaults.RoleMode,
		SeasonTypes: defaults.SeasonTypes,
		ExcludeDNP:  defaults.ExcludeDNP,
	}

	if cfg.WarmOnStartup {
		warmer.EnsureWarm(defaultFilters)
	}
	if err := warmer.Start(cfg.WarmSchedule, defaultFilters); err != nil {
		logrus.Errorf("Failed to schedule cache warm: %v", err)
	}
	defer warmer.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.GetHealth)

	apiGroup := router.Group("/api/v1")
	api.SetupRoutes(apiGroup, api.Services{
		Defense:    defense,
		Possession: possession,
		Baseline:   baseline,
		DefCache:   defCache,
		Matchups:   matchups,
		Schedule:   schedule,
		Warmer:     warmer,
	}, defaults)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}
	logrus.Info("Server exited")
}

// buildStore picks the cache backing store from config: a local file
// tree by default, Redis or a SQL database when configured.
func buildStore(cfg *config.Config, logger *logrus.Logger) (blobstore.Store, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis unreachable: %w", err)
		}
		logger.Info("Using Redis cache backend")
		return blobstore.NewRedisStore(client), func() { client.Close() }, nil

	case "sql":
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return nil, nil, err
		}
		store, err := blobstore.NewGormStore(db.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQL cache backend")
		return store, func() { db.Close() }, nil

	default:
		store, err := blobstore.NewFileStore(cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("Using file cache backend at %s", cfg.CacheDir)
		return store, func() {}, nil
	}
}
