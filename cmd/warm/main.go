package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
	"hooplens/internal/services"
	"hooplens/pkg/blobstore"
	"hooplens/pkg/config"
	"hooplens/pkg/database"
)

// warm builds the defense and baseline caches offline, so a deploy can
// ship with a hot cache instead of paying the build cost on first
// request.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: warm [defense|baseline|all]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
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

	filters := nba.DefenseFilters{
		Season:      cfg.DefaultSeason,
		RoleMode:    nba.ParseRoleMode(cfg.DefaultRoleMode),
		SeasonTypes: nba.ParseSeasonTypes(cfg.DefaultSeasonTypes),
		ExcludeDNP:  cfg.DefaultExcludeDNP,
	}
	ctx := context.Background()

	command := os.Args[1]
	switch command {
	case "defense":
		warmDefense(ctx, defense, registry, filters, logger)

	case "baseline":
		if _, err := baseline.Baseline(ctx, cfg.DefaultSeason); err != nil {
			logrus.Fatalf("Failed to build league baseline: %v", err)
		}
		logrus.Info("League baseline built")

	case "all":
		warmDefense(ctx, defense, registry, filters, logger)
		if _, err := baseline.Baseline(ctx, cfg.DefaultSeason); err != nil {
			logrus.Fatalf("Failed to build league baseline: %v", err)
		}
		logrus.Info("League baseline built")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func warmDefense(ctx context.Context, defense *services.DefenseService, registry *nba.Registry, f nba.DefenseFilters, logger *logrus.Logger) {
	built := 0
	for _, abbr := range registry.Abbreviations() {
		if _, err := defense.Aggregate(ctx, abbr, f, services.AggregateOptions{SkipBulkCache: true}); err != nil {
			logger.Warnf("Warm failed for %s: %v", abbr, err)
			continue
		}
		built++
		logger.Infof("Warmed %s (%d/%d)", abbr, built, len(registry.Teams()))
	}
	logger.Infof("Defense cache warm finished: %d teams", built)
}

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
		return store, func() { db.Close() }, nil

	default:
		store, err := blobstore.NewFileStore(cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("Using file cache at %s", cfg.CacheDir)
		return store, func() {}, nil
	}
}
