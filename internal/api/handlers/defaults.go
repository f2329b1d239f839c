package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hooplens/internal/nba"
)

// Defaults are the request-parameter fallbacks, sourced from config at
// startup.
type Defaults struct {
	Season      string
	RoleMode    nba.RoleMode
	SeasonTypes []nba.SeasonType
	ExcludeDNP  bool
}

// filtersFromQuery assembles the defense filter set from query
// parameters, falling back to the configured defaults.
func (d Defaults) filtersFromQuery(c *gin.Context) nba.DefenseFilters {
	f := nba.DefenseFilters{
		Season:      strings.TrimSpace(c.DefaultQuery("season", d.Season)),
		RoleMode:    d.RoleMode,
		SeasonTypes: d.SeasonTypes,
		ExcludeDNP:  d.ExcludeDNP,
	}
	if raw := c.Query("role_mode"); raw != "" {
		f.RoleMode = nba.ParseRoleMode(raw)
	}
	if raw := c.Query("season_types"); raw != "" {
		f.SeasonTypes = nba.ParseSeasonTypes(raw)
	}
	if raw := c.Query("exclude_dnp"); raw != "" {
		f.ExcludeDNP = parseBool(raw, d.ExcludeDNP)
	}
	return f
}

func (d Defaults) seasonFromQuery(c *gin.Context) string {
	return strings.TrimSpace(c.DefaultQuery("season", d.Season))
}

func parseBool(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes":
		return true
	case "0", "f", "false", "n", "no":
		return false
	}
	return fallback
}
