package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	planapp "github.com/homeops/backend/internal/application/plan"
	proposalapp "github.com/homeops/backend/internal/application/proposal"
)

// ProjectHandler handles project API endpoints
type ProjectHandler struct {
	BaseHandler
	projectService  *planapp.ProjectService
	proposalService *proposalapp.ProposalService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *planapp.ProjectService, proposalService *proposalapp.ProposalService) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		proposalService: proposalService,
	}
}

// Create handles POST /plan/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req planapp.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.CreatedBy = actorID(c)

	project, err := h.projectService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, project)
}

// Get handles GET /plan/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, project)
}

// List handles GET /plan/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var filter planapp.ProjectListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, projects, total, page, pageSize)
}

// Update handles PUT /plan/projects/:id, replacing the whole tree
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req planapp.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, project)
}

// UpdateStatus handles PUT /plan/projects/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req planapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, project)
}

// Clone handles POST /plan/projects/:id/clone
func (h *ProjectHandler) Clone(c *gin.Context) {
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

	project, err := h.projectService.Clone(c.Request.Context(), id, req, getIdempotencyKey(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, project)
}

// Import handles POST /plan/projects/:id/import
func (h *ProjectHandler) Import(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req planapp.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.projectService.Import(c.Request.Context(), id, req, getIdempotencyKey(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Proposal handles GET /plan/projects/:id/proposal, returning a rendered PDF
func (h *ProjectHandler) Proposal(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.proposalService.Generate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(result.PDFData)))
	c.Data(http.StatusOK, result.ContentType, result.PDFData)
}

// Delete handles DELETE /plan/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
