package handlers

import (
	"github.com/brightpath/opsconsole/backend/internal/middleware"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClientHandler struct {
	clients  *services.ClientService
	resolver *services.VisibilityResolver
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{
		clients:  services.NewClientService(db),
		resolver: services.NewVisibilityResolver(db),
	}
}

// List returns the clients visible to the caller
// GET /api/clients
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clients.List(h.resolver.Resolve(operator(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, clients)
}

// Get returns one client
// GET /api/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	client, err := h.clients.GetByID(h.resolver.Resolve(operator(c)), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, client)
}

// Create creates a client record
// POST /api/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client, err := h.clients.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Update edits a client record
// PUT /api/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client, err := h.clients.Update(h.resolver.Resolve(operator(c)), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, client)
}

// Delete removes a client, detaching its projects
// DELETE /api/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.clients.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "client deleted")
}

// Delegate grants a project manager responsibility for a client
// POST /api/clients/:id/delegations
func (h *ClientHandler) Delegate(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ManagerID uint `json:"manager_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.clients.DelegateClient(req.ManagerID, clientID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "client delegated")
}

// RevokeDelegation removes a manager's responsibility for a client
// DELETE /api/clients/:id/delegations/:managerID
func (h *ClientHandler) RevokeDelegation(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}
	managerID, ok := parseID(c, "managerID")
	if !ok {
		return
	}

	if err := h.clients.RevokeClientDelegation(managerID, clientID); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, "client delegation removed")
}
