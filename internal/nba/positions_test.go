package nba

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple guard", "G", "G"},
		{"hyphenated takes first", "G-F", "G"},
		{"slash takes first", "F/C", "F"},
		{"comma takes first", "C, F", "C"},
		{"space takes first", "PG SG", "PG"},
		{"lowercase normalized", "sf", "SF"},
		{"alias guard", "Guard", "G"},
		{"alias forward", "Forward", "F"},
		{"alias wing", "Wing", "F"},
		{"alias center", "Center", "C"},
		{"alias big", "big", "C"},
		{"combo guard-forward", "GF", "G"},
		{"combo forward-guard", "FG", "F"},
		{"empty is unknown", "", "UNK"},
		{"whitespace is unknown", "   ", "UNK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePosition(tt.input))
		})
	}
}

func TestBucketForToken(t *testing.T) {
	assert.Equal(t, BucketGuard, BucketForToken("PG"))
	assert.Equal(t, BucketGuard, BucketForToken("SG"))
	assert.Equal(t, BucketGuard, BucketForToken("G"))
	assert.Equal(t, BucketForward, BucketForToken("SF"))
	assert.Equal(t, BucketForward, BucketForToken("PF"))
	assert.Equal(t, BucketForward, BucketForToken("F"))
	assert.Equal(t, BucketCenter, BucketForToken("C"))
	assert.Equal(t, BucketOther, BucketForToken("UNK"))
	assert.Equal(t, BucketOther, BucketForToken("XYZ"))
}

func TestChooseBucket(t *testing.T) {
	tests := []struct {
		name     string
		startPos string
		roster   string
		mode     RoleMode
		expected Bucket
	}{
		{"start mode uses lineup", "F", "G", RoleModeStart, BucketForward},
		{"start mode bench lands in other", "", "G", RoleModeStart, BucketOther},
		{"roster mode ignores lineup", "F", "G", RoleModeRoster, BucketGuard},
		{"either prefers lineup", "C", "G", RoleModeEither, BucketCenter},
		{"either falls back to roster", "", "G", RoleModeEither, BucketGuard},
		{"either with neither is other", "", "", RoleModeEither, BucketOther},
		{"hyphenated roster position", "", "F-C", RoleModeEither, BucketForward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChooseBucket(tt.startPos, tt.roster, tt.mode))
		})
	}
}

func TestParseRoleMode(t *testing.T) {
	assert.Equal(t, RoleModeStart, ParseRoleMode("start"))
	assert.Equal(t, RoleModeRoster, ParseRoleMode("ROSTER"))
	assert.Equal(t, RoleModeEither, ParseRoleMode("either"))
	assert.Equal(t, RoleModeEither, ParseRoleMode(""))
	assert.Equal(t, RoleModeEither, ParseRoleMode("garbage"))
}
