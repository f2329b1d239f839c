package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
)

// GameService resolves the set of game ids a team has played in a
// season. Two upstream sources are merged: the per-season-type team
// game log and the broader game-finder search. The persisted set only
// ever grows; a refresh re-queries upstream but unions the result with
// what is already cached, so late or flaky upstream responses never
// shrink an established set.
type GameService struct {
	provider nba.StatsProvider
	cache    *CacheService
	retry    providers.RetryPolicy
	logger   *logrus.Logger
}

func NewGameService(provider nba.StatsProvider, cache *CacheService, retry providers.RetryPolicy, logger *logrus.Logger) *GameService {
	return &GameService{provider: provider, cache: cache, retry: retry, logger: logger}
}

// ResolveGames returns the sorted game ids for the team. With refresh
// false a cached entry is returned as-is; with refresh true upstream is
// re-queried and merged into the cached set.
func (s *GameService) ResolveGames(ctx context.Context, team nba.Team, season string, seasonTypes []nba.SeasonType, refresh bool) ([]string, error) {
	f := nba.DefenseFilters{Season: season, SeasonTypes: seasonTypes}
	key := GameIDsCacheKey(team.Abbreviation, season, f.SeasonTypesKey())

	var entry nba.GameIDCacheEntry
	hit, err := s.cache.Get(ctx, key, &entry)
	if err != nil {
		return nil, err
	}
	if hit && !refresh && len(entry.GameIDs) > 0 {
		return entry.GameIDs, nil
	}

	found := make(map[string]bool, len(entry.GameIDs))
	for _, id := range entry.GameIDs {
		found[id] = true
	}
	before := len(found)

	for _, st := range seasonTypes {
		var ids []string
		err := s.retry.Do(ctx, fmt.Sprintf("fetch game log for %s (%s)", team.Abbreviation, st), func() error {
			var ferr error
			ids, ferr = s.provider.TeamGameLog(ctx, team.ID, season, st)
			return ferr
		})
		if err != nil {
			s.logger.Warnf("Game log unavailable for %s (%s): %v", team.Abbreviation, st, err)
			continue
		}
		for _, id := range ids {
			found[id] = true
		}
	}

	var finderIDs []string
	err = s.retry.Do(ctx, "find games for "+team.Abbreviation, func() error {
		var ferr error
		finderIDs, ferr = s.provider.FindTeamGames(ctx, team.ID, season)
		return ferr
	})
	if err != nil {
		s.logger.Warnf("Game finder unavailable for %s: %v", team.Abbreviation, err)
	}
	for _, id := range finderIDs {
		found[id] = true
	}

	if len(found) == 0 {
		return nil, &nba.RetrievalError{Message: fmt.Sprintf("no games found for %s in %s", team.Abbreviation, season)}
	}

	merged := make([]string, 0, len(found))
	for id := range found {
		merged = append(merged, id)
	}
	sort.Strings(merged)

	if len(found) != before || !hit {
		entry = nba.GameIDCacheEntry{
			Season:      season,
			Team:        team.Abbreviation,
			SeasonTypes: seasonTypes,
			GameIDs:     merged,
			UpdatedAt:   time.Now().UTC(),
		}
		if err := s.cache.Put(ctx, key, entry); err != nil {
			s.logger.Warnf("Failed to persist game ids for %s: %v", team.Abbreviation, err)
		}
	}
	return merged, nil
}
