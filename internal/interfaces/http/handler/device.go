package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/homeops/backend/internal/application/catalog"
)

// DeviceHandler handles device catalog API endpoints
type DeviceHandler struct {
	BaseHandler
	deviceService *catalogapp.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceService *catalogapp.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// Create handles POST /catalog/devices
func (h *DeviceHandler) Create(c *gin.Context) {
	var req catalogapp.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.CreatedBy = actorID(c)

	device, err := h.deviceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, device)
}

// Get handles GET /catalog/devices/:id
func (h *DeviceHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	device, err := h.deviceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, device)
}

// List handles GET /catalog/devices
func (h *DeviceHandler) List(c *gin.Context) {
	var filter catalogapp.DeviceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	devices, total, err := h.deviceService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, devices, total, page, pageSize)
}

// Update handles PUT /catalog/devices/:id
func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req catalogapp.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	device, err := h.deviceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, device)
}

// Activate handles POST /catalog/devices/:id/activate
func (h *DeviceHandler) Activate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	device, err := h.deviceService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, device)
}

// Deactivate handles POST /catalog/devices/:id/deactivate
func (h *DeviceHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	device, err := h.deviceService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, device)
}

// Discontinue handles POST /catalog/devices/:id/discontinue
func (h *DeviceHandler) Discontinue(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	device, err := h.deviceService.Discontinue(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, device)
}

// Delete handles DELETE /catalog/devices/:id
func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deviceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
