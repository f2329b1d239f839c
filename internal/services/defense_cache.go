package services

import (
	"context"
	"strings"
	"sync"

	"hooplens/internal/nba"
)

// TeamDefenseCache manages the two-level defense cache: per-team
// entries plus a bulk all-teams entry per filter set. Bulk writes are
// read-modify-write, so they are serialized per filter key; concurrent
// builds of different filter sets do not contend.
type TeamDefenseCache struct {
	cache *CacheService

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

func NewTeamDefenseCache(cache *CacheService) *TeamDefenseCache {
	return &TeamDefenseCache{
		cache:    cache,
		keyLocks: make(map[string]*sync.Mutex),
	}
}

func (c *TeamDefenseCache) lockFor(filterKey string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.keyLocks[filterKey]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.keyLocks[filterKey] = l
	return l
}

// GetTeam looks up one team's aggregate, consulting the bulk entry
// first and falling back to the per-team entry.
func (c *TeamDefenseCache) GetTeam(ctx context.Context, teamAbbr string, f nba.DefenseFilters) (nba.DefenseAggregate, bool, error) {
	abbr := strings.ToUpper(teamAbbr)

	var bulk nba.AllTeamsAggregate
	hit, err := c.cache.Get(ctx, AllTeamsCacheKey(f), &bulk)
	if err != nil {
		return nba.DefenseAggregate{}, false, err
	}
	if hit {
		if agg, ok := bulk.Teams[abbr]; ok {
			return agg, true, nil
		}
	}

	var agg nba.DefenseAggregate
	hit, err = c.cache.Get(ctx, TeamDefenseCacheKey(abbr, f), &agg)
	if err != nil {
		return nba.DefenseAggregate{}, false, err
	}
	return agg, hit, nil
}

// PutTeam stores the per-team entry and merges it into the bulk entry
// under the filter set's lock.
func (c *TeamDefenseCache) PutTeam(ctx context.Context, agg nba.DefenseAggregate, f nba.DefenseFilters) error {
	abbr := strings.ToUpper(agg.TargetTeamAbbr)
	if err := c.cache.Put(ctx, TeamDefenseCacheKey(abbr, f), agg); err != nil {
		return err
	}

	l := c.lockFor(f.Key())
	l.Lock()
	defer l.Unlock()

	var bulk nba.AllTeamsAggregate
	hit, err := c.cache.Get(ctx, AllTeamsCacheKey(f), &bulk)
	if err != nil {
		return err
	}
	if !hit {
		bulk = nba.AllTeamsAggregate{
			Season:      f.Season,
			ExcludeDNP:  f.ExcludeDNP,
			RoleMode:    f.RoleMode,
			SeasonTypes: f.SeasonTypes,
		}
	}
	if bulk.Teams == nil {
		bulk.Teams = make(map[string]nba.DefenseAggregate)
	}
	bulk.Teams[abbr] = agg
	return c.cache.Put(ctx, AllTeamsCacheKey(f), bulk)
}

// GetBulk returns the bulk entry for the filter set, if present.
func (c *TeamDefenseCache) GetBulk(ctx context.Context, f nba.DefenseFilters) (nba.AllTeamsAggregate, bool, error) {
	var bulk nba.AllTeamsAggregate
	hit, err := c.cache.Get(ctx, AllTeamsCacheKey(f), &bulk)
	if err != nil {
		return nba.AllTeamsAggregate{}, false, err
	}
	return bulk, hit, nil
}

// IsBulkReady reports whether the bulk entry covers at least the
// expected number of teams.
func (c *TeamDefenseCache) IsBulkReady(ctx context.Context, f nba.DefenseFilters, expected int) (bool, error) {
	bulk, hit, err := c.GetBulk(ctx, f)
	if err != nil {
		return false, err
	}
	return hit && len(bulk.Teams) >= expected, nil
}
