package api

import (
	"github.com/gin-gonic/gin"

	"hooplens/internal/api/handlers"
	"hooplens/internal/services"
)

// Services bundles everything the route handlers depend on.
type Services struct {
	Defense    *services.DefenseService
	Possession *services.PossessionService
	Baseline   *services.BaselineService
	DefCache   *services.TeamDefenseCache
	Matchups   *services.MatchupService
	Schedule   *services.ScheduleService
	Warmer     *services.CacheWarmer
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, svc Services, defaults handlers.Defaults) {
	defenseHandler := handlers.NewDefenseHandler(svc.Defense, svc.Possession, svc.Baseline, svc.DefCache, defaults)
	matchupHandler := handlers.NewMatchupHandler(svc.Matchups, svc.Schedule, defaults)
	warmHandler := handlers.NewWarmHandler(svc.Warmer, defaults)

	group.GET("/matches", matchupHandler.GetMatches)
	group.GET("/stats", matchupHandler.GetStats)
	group.GET("/stats-adv", matchupHandler.GetStatsAdvanced)

	group.GET("/team-defense", defenseHandler.GetTeamDefense)
	group.GET("/team-defense-pos", defenseHandler.GetTeamDefensePossession)

	group.POST("/warm", warmHandler.TriggerWarm)
	group.GET("/warm/status", warmHandler.GetWarmStatus)
}
