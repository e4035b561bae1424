package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/homeops/backend/internal/application/identity"
)

// RoleHandler handles role management API endpoints
type RoleHandler struct {
	BaseHandler
	roleService *identityapp.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *identityapp.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create handles POST /identity/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req identityapp.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, role)
}

// Get handles GET /identity/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, role)
}

// List handles GET /identity/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, roles)
}

// Update handles PUT /identity/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req identityapp.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, role)
}

// Delete handles DELETE /identity/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
