package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{dashboard: services.NewDashboardService(db)}
}

// GetStats returns the dashboard within the caller's visibility scope
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.GetStats(operator(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
