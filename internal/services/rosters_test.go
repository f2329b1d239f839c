package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hooplens/internal/nba"
)

func TestPlayerPositions(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.rosters[bosID] = []nba.RosterEntry{
		{PlayerID: 1, Name: "Guard One", Position: "G"},
		{PlayerID: 2, Name: "No Position", Position: ""},
	}
	stack.provider.rosters[nykID] = []nba.RosterEntry{
		{PlayerID: 3, Name: "Forward Three", Position: "F-C"},
	}

	positions, err := stack.rosters.PlayerPositions(context.Background(), "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "G", positions[1])
	assert.Equal(t, "UNK", positions[2], "missing positions normalize to UNK")
	assert.Equal(t, "F-C", positions[3])

	// One roster call per team, then served from cache.
	assert.Equal(t, 30, stack.provider.callCount("TeamRoster"))
	_, err = stack.rosters.PlayerPositions(context.Background(), "2025-26")
	require.NoError(t, err)
	assert.Equal(t, 30, stack.provider.callCount("TeamRoster"))
}

func TestPlayerPositionsSkipsFailingTeams(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.errs["TeamRoster"] = assert.AnError

	positions, err := stack.rosters.PlayerPositions(context.Background(), "2025-26")
	require.NoError(t, err, "one bad team must not block the map")
	assert.Empty(t, positions)
}
