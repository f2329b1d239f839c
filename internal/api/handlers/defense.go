package handlers

import (
	"github.com/gin-gonic/gin"

	"hooplens/internal/nba"
	"hooplens/internal/services"
	"hooplens/pkg/utils"
)

type DefenseHandler struct {
	defense    *services.DefenseService
	possession *services.PossessionService
	baseline   *services.BaselineService
	defCache   *services.TeamDefenseCache
	defaults   Defaults
}

func NewDefenseHandler(defense *services.DefenseService, possession *services.PossessionService, baseline *services.BaselineService, defCache *services.TeamDefenseCache, defaults Defaults) *DefenseHandler {
	return &DefenseHandler{
		defense:    defense,
		possession: possession,
		baseline:   baseline,
		defCache:   defCache,
		defaults:   defaults,
	}
}

// GetTeamDefense returns a team's per-game defense-by-position profile.
// GET /api/team-defense?team=BOS&season=2025-26&role_mode=either&season_types=rs&exclude_dnp=true
// With all=true the bulk all-teams entry is returned instead.
func (h *DefenseHandler) GetTeamDefense(c *gin.Context) {
	f := h.defaults.filtersFromQuery(c)

	if parseBool(c.Query("all"), false) {
		bulk, hit, err := h.defCache.GetBulk(c.Request.Context(), f)
		if err != nil {
			utils.SendInternalError(c, "Failed to read defense cache")
			return
		}
		if !hit {
			utils.SendNotFound(c, "All-teams defense cache is not built yet; trigger a warm first")
			return
		}
		utils.SendSuccess(c, bulk)
		return
	}

	team := c.Query("team")
	if team == "" {
		utils.SendValidationError(c, "Missing team", "Provide team as an abbreviation, full name or id")
		return
	}

	agg, err := h.defense.Aggregate(c.Request.Context(), team, f, services.AggregateOptions{
		RefreshGames: parseBool(c.Query("refresh_games"), false),
	})
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, agg)
}

// GetTeamDefensePossession returns the possession-normalized profile.
// GET /api/team-defense-pos?team=BOS&season=2025-26&z=true
func (h *DefenseHandler) GetTeamDefensePossession(c *gin.Context) {
	team := c.Query("team")
	if team == "" {
		utils.SendValidationError(c, "Missing team", "Provide team as an abbreviation, full name or id")
		return
	}
	season := h.defaults.seasonFromQuery(c)

	agg, err := h.possession.Aggregate(c.Request.Context(), team, season, parseBool(c.Query("refresh_games"), false))
	if err != nil {
		sendDomainError(c, err)
		return
	}
	if parseBool(c.Query("z"), false) {
		if err := h.baseline.AttachZScores(c.Request.Context(), &agg, true); err != nil {
			sendDomainError(c, err)
			return
		}
	}
	utils.SendSuccess(c, agg)
}

// sendDomainError maps the domain error taxonomy onto HTTP statuses.
func sendDomainError(c *gin.Context, err error) {
	switch {
	case nba.IsNotFound(err):
		utils.SendNotFound(c, err.Error())
	case nba.IsRetrieval(err):
		utils.SendUpstreamError(c, err.Error())
	default:
		utils.SendInternalError(c, "Unexpected error")
	}
}
