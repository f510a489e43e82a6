package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports subsystem status.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "log-only"
	if queue := services.GetNotificationQueue(); queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var activeAssignments int64
	models.GetDB().Model(&models.Assignment{}).
		Where("status = ?", models.AssignmentActive).
		Count(&activeAssignments)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "opsconsole",
		"components": gin.H{
			"database":           dbStatus,
			"queue_mode":         queueMode,
			"sse_clients":        services.GetSSEHub().ClientCount(),
			"active_assignments": activeAssignments,
		},
	})
}
