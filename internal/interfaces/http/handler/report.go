package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/homeops/backend/internal/application/report"
)

// ReportHandler handles reporting API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Portfolio handles GET /reports/portfolio
func (h *ReportHandler) Portfolio(c *gin.Context) {
	summary, err := h.reportService.PortfolioSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// TopDevices handles GET /reports/top-devices
func (h *ReportHandler) TopDevices(c *gin.Context) {
	var query reportapp.TopDevicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	devices, err := h.reportService.TopDevices(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, devices)
}
