package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	users    *services.UserService
	resolver *services.VisibilityResolver
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		users:    services.NewUserService(db),
		resolver: services.NewVisibilityResolver(db),
	}
}

// List returns the users visible to the caller
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(h.resolver.Resolve(operator(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// Get returns one user
// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(h.resolver.Resolve(operator(c)), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Create creates a local user (admin only, enforced at the route)
// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update edits a user's profile, role, or active flag
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Delete removes a user and their assignments and delegations
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "user deleted")
}
