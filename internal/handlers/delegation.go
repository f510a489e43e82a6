package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/middleware"
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DelegationHandler struct {
	delegations *services.DelegationService
	queue       services.NotificationQueue
}

func NewDelegationHandler(db *gorm.DB, queue services.NotificationQueue) *DelegationHandler {
	return &DelegationHandler{
		delegations: services.NewDelegationService(db),
		queue:       queue,
	}
}

// List returns the delegation graph. Admins see every link; a project
// manager sees their own pool.
// GET /api/delegations
func (h *DelegationHandler) List(c *gin.Context) {
	if middleware.GetRole(c) == models.RoleAdmin {
		links, err := h.delegations.Links()
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, links)
		return
	}

	members, err := h.delegations.MembersOf(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

// Link places a team member into a manager's pool
// POST /api/delegations
func (h *DelegationHandler) Link(c *gin.Context) {
	var req services.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	link, err := h.delegations.Link(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.queue.Enqueue(&services.NotificationTask{
		Kind:     services.NotifyMemberDelegated,
		UserID:   req.ManagerID,
		TargetID: req.MemberID,
		Message:  "you were placed in a manager's pool",
	})

	response.Created(c, link)
}

// Unlink removes a team member from their manager's pool
// DELETE /api/delegations/:memberID
func (h *DelegationHandler) Unlink(c *gin.Context) {
	memberID, ok := parseID(c, "memberID")
	if !ok {
		return
	}

	if err := h.delegations.Unlink(memberID); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "delegation removed")
}
