package handlers

import (
	"github.com/gin-gonic/gin"

	"hooplens/internal/services"
	"hooplens/pkg/utils"
)

type MatchupHandler struct {
	matchups *services.MatchupService
	schedule *services.ScheduleService
	defaults Defaults
}

func NewMatchupHandler(matchups *services.MatchupService, schedule *services.ScheduleService, defaults Defaults) *MatchupHandler {
	return &MatchupHandler{
		matchups: matchups,
		schedule: schedule,
		defaults: defaults,
	}
}

// GetMatches returns today's scheduled games, in US Eastern terms.
// GET /api/matches
func (h *MatchupHandler) GetMatches(c *gin.Context) {
	games, err := h.schedule.TodayMatches(c.Request.Context())
	if err != nil {
		utils.SendUpstreamError(c, "Failed to fetch today's schedule")
		return
	}
	utils.SendSuccess(c, games)
}

// GetStats returns both rosters' rotation players with form lines.
// GET /api/stats?home=BOS&away=LAL&season=2025-26
func (h *MatchupHandler) GetStats(c *gin.Context) {
	home, away := c.Query("home"), c.Query("away")
	if home == "" || away == "" {
		utils.SendValidationError(c, "Missing teams", "Provide both home and away team identifiers")
		return
	}

	players, err := h.matchups.MatchPlayers(c.Request.Context(), home, away, h.defaults.seasonFromQuery(c))
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, players)
}

// GetStatsAdvanced extends GetStats with matchup advantage scores
// against the opposing defense.
// GET /api/stats-adv?home=BOS&away=LAL&season=2025-26
func (h *MatchupHandler) GetStatsAdvanced(c *gin.Context) {
	home, away := c.Query("home"), c.Query("away")
	if home == "" || away == "" {
		utils.SendValidationError(c, "Missing teams", "Provide both home and away team identifiers")
		return
	}

	players, err := h.matchups.MatchPlayersAdvanced(c.Request.Context(), home, away, h.defaults.seasonFromQuery(c))
	if err != nil {
		sendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, players)
}
