package handlers

import (
	"strconv"

	"github.com/brightpath/opsconsole/backend/internal/middleware"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	resolver       *services.VisibilityResolver
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
		resolver:       services.NewVisibilityResolver(db),
	}
}

// operator builds the acting identity from the request context.
func operator(c *gin.Context) services.Operator {
	return services.Operator{
		ID:   middleware.GetUserID(c),
		Role: middleware.GetRole(c),
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns the projects visible to the caller
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(operator(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Columns returns the board columns in workflow order
// GET /api/projects/columns
func (h *ProjectHandler) Columns(c *gin.Context) {
	response.Success(c, h.projectService.Columns())
}

// Get returns one project with its assignments
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(operator(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Create creates a project in the initial workflow stage
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Update updates a project's descriptive fields
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(operator(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// ChangeStatus moves a project to another workflow stage
// PUT /api/projects/:id/status
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.ChangeStatus(operator(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes a project
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "project deleted")
}

// AssignablePool returns the users the caller may assign to a project
// GET /api/projects/:id/assignable-pool
func (h *ProjectHandler) AssignablePool(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	pool, err := h.resolver.Resolve(operator(c)).AssignablePool(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pool)
}
