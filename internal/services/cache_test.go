package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hooplens/internal/nba"
	"hooplens/pkg/blobstore"
)

func TestCacheKeys(t *testing.T) {
	f := nba.DefenseFilters{
		Season:      "2025-26",
		ExcludeDNP:  true,
		RoleMode:    nba.RoleModeEither,
		SeasonTypes: []nba.SeasonType{nba.RegularSeason},
	}

	assert.Equal(t, "def_by_pos_box_pergame_BOS_2025-26_exdnp_either_Regular Season", TeamDefenseCacheKey("bos", f))
	assert.Equal(t, "def_by_pos_box_pergame_ALL_2025-26_exdnp_either_Regular Season", AllTeamsCacheKey(f))

	f.ExcludeDNP = false
	f.SeasonTypes = []nba.SeasonType{nba.RegularSeason, nba.Playoffs}
	assert.Equal(t, "def_by_pos_box_pergame_BOS_2025-26_incldnp_either_Regular Season|Playoffs", TeamDefenseCacheKey("BOS", f))

	assert.Equal(t, "team_games_BOS_2025-26_Regular Season", GameIDsCacheKey("bos", "2025-26", "Regular Season"))
	assert.Equal(t, "box_0022500001", BoxscoreCacheKey("0022500001"))
	assert.Equal(t, "player_pos_map_2025-26", PlayerPositionsCacheKey("2025-26"))
	assert.Equal(t, "def_teampos_BOS_2025-26", PossessionCacheKey("bos", "2025-26"))
	assert.Equal(t, "league_baseline_2025-26", BaselineCacheKey("2025-26"))
}

func TestCacheServiceRoundTrip(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := blobstore.NewMemoryStore()
	cache := NewCacheService(store, logger)
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	var out payload
	hit, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Put(ctx, "k", payload{Name: "pace", Value: 99.5}))
	hit, err = cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "pace", Value: 99.5}, out)
}

func TestCacheServiceCorruptEntryIsMiss(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := blobstore.NewMemoryStore()
	cache := NewCacheService(store, logger)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bad", []byte("{not json")))

	var out map[string]string
	hit, err := cache.Get(ctx, "bad", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}
