package handlers

import (
	"github.com/gin-gonic/gin"

	"hooplens/internal/services"
	"hooplens/pkg/utils"
)

type WarmHandler struct {
	warmer   *services.CacheWarmer
	defaults Defaults
}

func NewWarmHandler(warmer *services.CacheWarmer, defaults Defaults) *WarmHandler {
	return &WarmHandler{warmer: warmer, defaults: defaults}
}

// TriggerWarm kicks off a background cache build for the filter set.
// POST /api/warm?season=2025-26
// Responds 202 immediately; warming is idempotent while in flight.
func (h *WarmHandler) TriggerWarm(c *gin.Context) {
	f := h.defaults.filtersFromQuery(c)
	started := h.warmer.EnsureWarm(f)
	utils.SendAccepted(c, gin.H{
		"started":  started,
		"building": h.warmer.IsBuilding(f),
		"season":   f.Season,
	})
}

// GetWarmStatus reports cache readiness for the filter set.
// GET /api/warm/status?season=2025-26
func (h *WarmHandler) GetWarmStatus(c *gin.Context) {
	f := h.defaults.filtersFromQuery(c)
	utils.SendSuccess(c, h.warmer.Status(c.Request.Context(), f))
}
