package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hooplens/internal/nba"
)

func TestBoxscoreCachesForever(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.boxscores["001"] = []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 10, 5, 2),
	}

	rows, err := stack.boxscores.Boxscore(context.Background(), "001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, stack.provider.callCount("BoxScore"))

	// A finished game's box score never changes: the second read must
	// hit the cache even if upstream has since vanished.
	delete(stack.provider.boxscores, "001")
	rows, err = stack.boxscores.Boxscore(context.Background(), "001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10.0, rows[0].Points)
	assert.Equal(t, 1, stack.provider.callCount("BoxScore"))
}

func TestBoxscoreFailureIsNotCached(t *testing.T) {
	stack := newTestStack(t)

	rows, err := stack.boxscores.Boxscore(context.Background(), "404")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The game becomes available later; the next read must fetch it.
	stack.provider.boxscores["404"] = []nba.PlayerGameRecord{
		oppRow(2, "NYK", "30:00", "G", 10, 5, 2),
	}
	rows, err = stack.boxscores.Boxscore(context.Background(), "404")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
