package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/pkg/blobstore"
)

// CacheService wraps the blob store with JSON marshalling. Entries have
// no TTL; aggregate entries are replaced wholesale on refresh.
type CacheService struct {
	store  blobstore.Store
	logger *logrus.Logger
}

func NewCacheService(store blobstore.Store, logger *logrus.Logger) *CacheService {
	return &CacheService{store: store, logger: logger}
}

// Get unmarshals the entry into dest. The boolean reports a hit; a
// corrupt entry is treated as a miss and logged, not propagated.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warnf("Discarding corrupt cache entry %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *CacheService) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := s.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Cache key generators. Season, DNP flag, role mode and the season-type
// set are all part of the key: changing any parameter addresses a
// different namespace.

func TeamDefenseCacheKey(teamAbbr string, f nba.DefenseFilters) string {
	return fmt.Sprintf("def_by_pos_box_pergame_%s_%s_%s_%s_%s",
		strings.ToUpper(teamAbbr), f.Season, f.DNPKey(), strings.ToLower(string(f.RoleMode)), f.SeasonTypesKey())
}

func AllTeamsCacheKey(f nba.DefenseFilters) string {
	return fmt.Sprintf("def_by_pos_box_pergame_ALL_%s_%s_%s_%s",
		f.Season, f.DNPKey(), strings.ToLower(string(f.RoleMode)), f.SeasonTypesKey())
}

func GameIDsCacheKey(teamAbbr, season, seasonTypesKey string) string {
	return fmt.Sprintf("team_games_%s_%s_%s", strings.ToUpper(teamAbbr), season, seasonTypesKey)
}

func BoxscoreCacheKey(gameID string) string {
	return "box_" + gameID
}

func PlayerPositionsCacheKey(season string) string {
	return "player_pos_map_" + season
}

func PossessionCacheKey(teamAbbr, season string) string {
	return fmt.Sprintf("def_teampos_%s_%s", strings.ToUpper(teamAbbr), season)
}

func BaselineCacheKey(season string) string {
	return "league_baseline_" + season
}
