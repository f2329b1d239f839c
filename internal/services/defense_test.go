package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hooplens/internal/nba"
)

func TestAggregateSingleGame(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"0022500001"})
	stack.provider.boxscores["0022500001"] = []nba.PlayerGameRecord{
		oppRow(1, "BOS", "32:00", "G", 30, 4, 8), // own team, ignored
		oppRow(2, "NYK", "30:00", "G", 5, 3, 2),
		oppRow(3, "NYK", "25:00", "G", 4, 2, 1),
		oppRow(4, "NYK", "20:00", "C", 10, 8, 0),
	}

	agg, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "BOS", agg.TargetTeamAbbr)
	assert.Equal(t, 1, agg.Meta.GamesScanned)

	guards := agg.ByPositionPerGame[nba.BucketGuard]
	assert.Equal(t, 9.0, guards.TotalPtsSum)
	assert.Equal(t, 5.0, guards.TotalRebSum)
	assert.Equal(t, 3.0, guards.TotalAstSum)
	assert.Equal(t, 1, guards.GamesWithBucket)
	assert.Equal(t, 1, guards.GamesScanned)
	assert.Equal(t, 9.0, guards.PtsPerGame)
	assert.Equal(t, 9.0, guards.PtsPerGameWhenPresent)

	centers := agg.ByPositionPerGame[nba.BucketCenter]
	assert.Equal(t, 10.0, centers.TotalPtsSum)
	assert.Equal(t, 10.0, centers.PtsPerGame)

	// No forwards played; the bucket must be absent, not zero-filled.
	_, ok := agg.ByPositionPerGame[nba.BucketForward]
	assert.False(t, ok)
}

func TestAggregatePresenceDenominators(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001", "002", "003"})
	stack.provider.boxscores["001"] = []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 10, 0, 0),
		oppRow(4, "NYK", "20:00", "C", 10, 0, 0),
	}
	stack.provider.boxscores["002"] = []nba.PlayerGameRecord{
		oppRow(5, "LAL", "30:00", "G", 10, 0, 0),
		oppRow(6, "LAL", "20:00", "C", 20, 0, 0),
	}
	stack.provider.boxscores["003"] = []nba.PlayerGameRecord{
		oppRow(7, "MIA", "30:00", "G", 10, 0, 0),
	}

	agg, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Meta.GamesScanned)

	// Centers appeared in 2 of 3 games for 30 total points: diluted
	// per-game is 10, conditional per-game is 15.
	centers := agg.ByPositionPerGame[nba.BucketCenter]
	assert.Equal(t, 30.0, centers.TotalPtsSum)
	assert.Equal(t, 2, centers.GamesWithBucket)
	assert.Equal(t, 10.0, centers.PtsPerGame)
	assert.Equal(t, 15.0, centers.PtsPerGameWhenPresent)

	guards := agg.ByPositionPerGame[nba.BucketGuard]
	assert.Equal(t, 3, guards.GamesWithBucket)
	assert.Equal(t, guards.PtsPerGame, guards.PtsPerGameWhenPresent)
}

func TestAggregateConservation(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001", "002"})
	stack.provider.boxscores["001"] = []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 11, 5, 3),
		oppRow(3, "NYK", "22:00", "F", 17, 7, 1),
		oppRow(4, "NYK", "", "", 0, 0, 0), // DNP
	}
	stack.provider.boxscores["002"] = []nba.PlayerGameRecord{
		oppRow(5, "LAL", "35:00", "C", 23, 12, 2),
		oppRow(6, "LAL", "12:00", "", 6, 1, 4), // bench, lands in OTHER
	}

	f := testFilters()
	f.ExcludeDNP = false
	agg, err := stack.defense.Aggregate(context.Background(), "BOS", f, AggregateOptions{})
	require.NoError(t, err)

	// Every opponent point lands in exactly one bucket.
	var total float64
	for _, line := range agg.ByPositionPerGame {
		total += line.TotalPtsSum
	}
	assert.Equal(t, 57.0, total)
}

func TestAggregateExcludeDNP(t *testing.T) {
	rows := []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 10, 0, 0),
		oppRow(4, "NYK", "0:00", "C", 0, 0, 0),
	}

	// Excluded: the zero-minute center never registers presence.
	stack := newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001"})
	stack.provider.boxscores["001"] = rows
	agg, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.NoError(t, err)
	_, ok := agg.ByPositionPerGame[nba.BucketCenter]
	assert.False(t, ok)

	// Included: the same row registers presence with zero production.
	stack = newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001"})
	stack.provider.boxscores["001"] = rows
	f := testFilters()
	f.ExcludeDNP = false
	agg, err = stack.defense.Aggregate(context.Background(), "BOS", f, AggregateOptions{})
	require.NoError(t, err)
	centers, ok := agg.ByPositionPerGame[nba.BucketCenter]
	require.True(t, ok)
	assert.Equal(t, 1, centers.GamesWithBucket)
	assert.Equal(t, 0.0, centers.TotalPtsSum)
}

func TestAggregateRosterFallback(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.rosters[nykID] = []nba.RosterEntry{
		{PlayerID: 77, Name: "Bench Forward", Position: "F"},
	}
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001"})
	stack.provider.boxscores["001"] = []nba.PlayerGameRecord{
		oppRow(77, "NYK", "18:00", "", 12, 6, 1),
	}

	f := testFilters()
	f.RoleMode = nba.RoleModeEither
	agg, err := stack.defense.Aggregate(context.Background(), "BOS", f, AggregateOptions{})
	require.NoError(t, err)

	forwards, ok := agg.ByPositionPerGame[nba.BucketForward]
	require.True(t, ok)
	assert.Equal(t, 12.0, forwards.TotalPtsSum)
}

func TestAggregateServesCachedResult(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001"})
	stack.provider.boxscores["001"] = []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 10, 0, 0),
	}

	_, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.NoError(t, err)
	calls := stack.provider.totalCalls()

	agg, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.NoError(t, err)
	assert.Equal(t, calls, stack.provider.totalCalls(), "cached aggregate must not touch the provider")
	assert.Equal(t, 10.0, agg.ByPositionPerGame[nba.BucketGuard].TotalPtsSum)
}

func TestAggregateSkipsUnscannableGames(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.setGameLog(bosID, nba.RegularSeason, []string{"001", "404"})
	stack.provider.boxscores["001"] = []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 10, 0, 0),
	}
	// Game 404 has no box score; it must not count toward denominators.

	agg, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Meta.GamesScanned)
	assert.Equal(t, 10.0, agg.ByPositionPerGame[nba.BucketGuard].PtsPerGame)
}

func TestAggregateUnknownTeam(t *testing.T) {
	stack := newTestStack(t)
	_, err := stack.defense.Aggregate(context.Background(), "Seattle SuperSonics", testFilters(), AggregateOptions{})
	require.Error(t, err)
	assert.True(t, nba.IsNotFound(err))
}

func TestAggregateNoGames(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.errs["TeamGameLog"] = assert.AnError
	stack.provider.errs["FindTeamGames"] = assert.AnError

	_, err := stack.defense.Aggregate(context.Background(), "BOS", testFilters(), AggregateOptions{})
	require.Error(t, err)
	assert.True(t, nba.IsRetrieval(err))
}
