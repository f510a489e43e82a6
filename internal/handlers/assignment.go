package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/middleware"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssignmentHandler struct {
	assignments *services.AssignmentService
	projects    *services.ProjectService
	resolver    *services.VisibilityResolver
	queue       services.NotificationQueue
}

func NewAssignmentHandler(db *gorm.DB, queue services.NotificationQueue) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: services.NewAssignmentService(db),
		projects:    services.NewProjectService(db),
		resolver:    services.NewVisibilityResolver(db),
		queue:       queue,
	}
}

// requireManage checks both halves of the capability: the operator may
// manage assignments at all, and the target project is inside their
// visibility scope.
func (h *AssignmentHandler) requireManage(c *gin.Context, projectID uint) bool {
	if !h.resolver.Resolve(operator(c)).CanManageAssignments() {
		response.Forbidden(c, "operator may not manage assignments")
		return false
	}
	if _, err := h.projects.GetByID(operator(c), projectID); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

// List returns the ledger rows for a project
// GET /api/projects/:id/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	// The ledger is only readable for projects the operator can see;
	// out-of-scope project ids read as not found.
	if _, err := h.projects.GetByID(operator(c), projectID); err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.assignments.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rows)
}

// ListMine returns the caller's own assignments across projects
// GET /api/assignments/mine
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	rows, err := h.assignments.ListByUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rows)
}

// Create assigns a user to a project
// POST /api/projects/:id/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !h.requireManage(c, projectID) {
		return
	}

	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.assignments.Create(projectID, &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.queue.Enqueue(&services.NotificationTask{
		Kind:      services.NotifyAssignmentCreated,
		ProjectID: projectID,
		UserID:    req.UserID,
		TargetID:  req.UserID,
		Message:   "you were assigned to a project",
	})
	services.GetSSEHub().Publish(services.BoardEvent{
		Type:      services.EventAssignmentCreated,
		ProjectID: projectID,
		UserID:    req.UserID,
		ActorID:   middleware.GetUserID(c),
	})

	response.Created(c, assignment)
}

// Update edits a ledger row
// PUT /api/projects/:id/assignments/:userID
func (h *AssignmentHandler) Update(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userID")
	if !ok {
		return
	}
	if !h.requireManage(c, projectID) {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.assignments.Update(projectID, userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.GetSSEHub().Publish(services.BoardEvent{
		Type:      services.EventAssignmentUpdated,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   middleware.GetUserID(c),
	})

	response.Success(c, assignment)
}

// Remove takes a user off a project
// DELETE /api/projects/:id/assignments/:userID
func (h *AssignmentHandler) Remove(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userID")
	if !ok {
		return
	}
	if !h.requireManage(c, projectID) {
		return
	}

	if err := h.assignments.Remove(projectID, userID); err != nil {
		response.Error(c, err)
		return
	}

	h.queue.Enqueue(&services.NotificationTask{
		Kind:      services.NotifyAssignmentRemoved,
		ProjectID: projectID,
		UserID:    userID,
		TargetID:  userID,
		Message:   "you were removed from a project",
	})
	services.GetSSEHub().Publish(services.BoardEvent{
		Type:      services.EventAssignmentRemoved,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   middleware.GetUserID(c),
	})

	response.SuccessMessage(c, "assignment removed")
}
