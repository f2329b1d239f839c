package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
)

// BoxscoreService serves per-game traditional box scores through the
// cache. A finished game's box score never changes, so cached entries
// are immutable and hit without any upstream call.
type BoxscoreService struct {
	provider nba.StatsProvider
	cache    *CacheService
	retry    providers.RetryPolicy
	logger   *logrus.Logger
}

func NewBoxscoreService(provider nba.StatsProvider, cache *CacheService, retry providers.RetryPolicy, logger *logrus.Logger) *BoxscoreService {
	return &BoxscoreService{provider: provider, cache: cache, retry: retry, logger: logger}
}

// Boxscore returns the player rows of one game. A game whose fetch
// fails after retries yields an empty slice rather than an error: the
// caller counts it as unscannable and moves on, and nothing is cached
// so a later pass can retry it.
func (s *BoxscoreService) Boxscore(ctx context.Context, gameID string) ([]nba.PlayerGameRecord, error) {
	key := BoxscoreCacheKey(gameID)

	var rows []nba.PlayerGameRecord
	hit, err := s.cache.Get(ctx, key, &rows)
	if err != nil {
		return nil, err
	}
	if hit {
		return rows, nil
	}

	err = s.retry.Do(ctx, "fetch box score "+gameID, func() error {
		var ferr error
		rows, ferr = s.provider.BoxScore(ctx, gameID)
		return ferr
	})
	if err != nil {
		s.logger.Warnf("Box score unavailable for game %s: %v", gameID, err)
		return nil, nil
	}

	if err := s.cache.Put(ctx, key, rows); err != nil {
		s.logger.Warnf("Failed to persist box score %s: %v", gameID, err)
	}
	return rows, nil
}
