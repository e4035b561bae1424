package handler

import (
	"github.com/gin-gonic/gin"

	planapp "github.com/homeops/backend/internal/application/plan"
)

// BuildSystemHandler handles build system template API endpoints
type BuildSystemHandler struct {
	BaseHandler
	buildSystemService *planapp.BuildSystemService
}

// NewBuildSystemHandler creates a new BuildSystemHandler
func NewBuildSystemHandler(buildSystemService *planapp.BuildSystemService) *BuildSystemHandler {
	return &BuildSystemHandler{buildSystemService: buildSystemService}
}

// Create handles POST /plan/build-systems
func (h *BuildSystemHandler) Create(c *gin.Context) {
	var req planapp.CreateBuildSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.CreatedBy = actorID(c)

	bs, err := h.buildSystemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, bs)
}

// Get handles GET /plan/build-systems/:id
func (h *BuildSystemHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	bs, err := h.buildSystemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bs)
}

// List handles GET /plan/build-systems
func (h *BuildSystemHandler) List(c *gin.Context) {
	var filter planapp.BuildSystemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	systems, total, err := h.buildSystemService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, systems, total, page, pageSize)
}

// Update handles PUT /plan/build-systems/:id, replacing the whole tree
func (h *BuildSystemHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req planapp.UpdateBuildSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	bs, err := h.buildSystemService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bs)
}

// Activate handles POST /plan/build-systems/:id/activate
func (h *BuildSystemHandler) Activate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	bs, err := h.buildSystemService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bs)
}

// Deactivate handles POST /plan/build-systems/:id/deactivate
func (h *BuildSystemHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	bs, err := h.buildSystemService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bs)
}

// Clone handles POST /plan/build-systems/:id/clone
func (h *BuildSystemHandler) Clone(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req planapp.CloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.CreatedBy = actorID(c)

	bs, err := h.buildSystemService.Clone(c.Request.Context(), id, req, getIdempotencyKey(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, bs)
}

// Delete handles DELETE /plan/build-systems/:id
func (h *BuildSystemHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.buildSystemService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
