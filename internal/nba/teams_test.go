package nba

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryContainsAllTeams(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.Teams(), 30)
	assert.Len(t, r.Abbreviations(), 30)
}

func TestResolve(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name       string
		identifier string
		expected   string
		wantErr    bool
	}{
		{"abbreviation", "BOS", "BOS", false},
		{"lowercase abbreviation", "bos", "BOS", false},
		{"numeric id", "1610612738", "BOS", false},
		{"full name", "Boston Celtics", "BOS", false},
		{"full name case-insensitive", "boston celtics", "BOS", false},
		{"unique substring", "Celtics", "BOS", false},
		{"ambiguous substring", "Los Angeles", "", true},
		{"unknown team", "Seattle SuperSonics", "", true},
		{"unknown id", "12345", "", true},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, err := r.Resolve(tt.identifier)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, team.Abbreviation)
		})
	}
}

func TestTeamByID(t *testing.T) {
	r := NewRegistry()

	team, ok := r.TeamByID(1610612747)
	require.True(t, ok)
	assert.Equal(t, "LAL", team.Abbreviation)

	_, ok = r.TeamByID(42)
	assert.False(t, ok)
}
