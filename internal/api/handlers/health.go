package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// GetHealth is the liveness probe; it returns 200 whenever the server
// is up, independent of cache state.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "hooplens",
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
