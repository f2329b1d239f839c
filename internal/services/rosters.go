package services

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
)

// RosterService resolves rosters and maintains the league-wide
// player-to-position map used for roster-based bucket assignment.
type RosterService struct {
	provider nba.StatsProvider
	registry *nba.Registry
	cache    *CacheService
	retry    providers.RetryPolicy
	logger   *logrus.Logger
}

func NewRosterService(provider nba.StatsProvider, registry *nba.Registry, cache *CacheService, retry providers.RetryPolicy, logger *logrus.Logger) *RosterService {
	return &RosterService{
		provider: provider,
		registry: registry,
		cache:    cache,
		retry:    retry,
		logger:   logger,
	}
}

// TeamRoster fetches one team's season roster with retries.
func (s *RosterService) TeamRoster(ctx context.Context, team nba.Team, season string) ([]nba.RosterEntry, error) {
	var roster []nba.RosterEntry
	err := s.retry.Do(ctx, "fetch roster for "+team.Abbreviation, func() error {
		var ferr error
		roster, ferr = s.provider.TeamRoster(ctx, team.ID, season)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return roster, nil
}

// PlayerPositions returns the season-wide player-id to roster-position
// map. The map is built once per season by walking every team's roster
// and cached; teams whose roster fetch fails after retries are skipped
// so one bad team cannot block the rest of the league.
func (s *RosterService) PlayerPositions(ctx context.Context, season string) (map[int]string, error) {
	key := PlayerPositionsCacheKey(season)

	cached := make(map[string]string)
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return decodePositionMap(cached), nil
	}

	s.logger.Infof("Building player position map for %s", season)
	out := make(map[int]string)
	for _, team := range s.registry.Teams() {
		roster, err := s.TeamRoster(ctx, team, season)
		if err != nil {
			s.logger.Warnf("Skipping roster for %s: %v", team.Abbreviation, err)
			continue
		}
		for _, entry := range roster {
			pos := entry.Position
			if pos == "" {
				pos = "UNK"
			}
			out[entry.PlayerID] = pos
		}
	}

	if err := s.cache.Put(ctx, key, encodePositionMap(out)); err != nil {
		s.logger.Warnf("Failed to persist position map for %s: %v", season, err)
	}
	return out, nil
}

// JSON object keys are strings, so the persisted shape keys by the
// player id's decimal form.

func encodePositionMap(m map[int]string) map[string]string {
	out := make(map[string]string, len(m))
	for id, pos := range m {
		out[strconv.Itoa(id)] = pos
	}
	return out
}

func decodePositionMap(m map[string]string) map[int]string {
	out := make(map[int]string, len(m))
	for raw, pos := range m {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		out[id] = pos
	}
	return out
}
