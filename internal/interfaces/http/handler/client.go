package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/homeops/backend/internal/application/partner"
)

// ClientHandler handles client API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create handles POST /partners/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req partnerapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.CreatedBy = actorID(c)

	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, client)
}

// Get handles GET /partners/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, client)
}

// List handles GET /partners/clients
func (h *ClientHandler) List(c *gin.Context) {
	var filter partnerapp.ClientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	clients, total, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, clients, total, page, pageSize)
}

// Update handles PUT /partners/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req partnerapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, client)
}

// Activate handles POST /partners/clients/:id/activate
func (h *ClientHandler) Activate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	client, err := h.clientService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, client)
}

// Deactivate handles POST /partners/clients/:id/deactivate
func (h *ClientHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	client, err := h.clientService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete handles DELETE /partners/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
