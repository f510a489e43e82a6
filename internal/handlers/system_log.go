package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	logs *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{logs: services.NewSystemLogService(db)}
}

// List returns audit log entries with filters and pagination
// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logs.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetModules returns the distinct module names present in the log
// GET /api/system-logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.logs.GetModules()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, modules)
}

// GetRetention returns the current retention window in days
// GET /api/system-logs/retention
func (h *SystemLogHandler) GetRetention(c *gin.Context) {
	response.Success(c, gin.H{"retention_days": h.logs.GetRetentionDays()})
}

// SetRetention updates the retention window
// PUT /api/system-logs/retention
func (h *SystemLogHandler) SetRetention(c *gin.Context) {
	var req struct {
		RetentionDays int `json:"retention_days" binding:"required,min=1,max=365"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.logs.SetRetentionDays(req.RetentionDays); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "retention updated")
}
