// Package report implements application services for portfolio reporting.
package report

import (
	"context"

	"github.com/homeops/backend/internal/domain/report"
	"github.com/homeops/backend/internal/domain/shared"
)

// defaultTopDevicesLimit caps the top-devices report when no limit is given
const defaultTopDevicesLimit = 10

// maxTopDevicesLimit bounds how many rows a single report request can ask for
const maxTopDevicesLimit = 100

// TopDevicesQuery is the request filter for the top-devices report
type TopDevicesQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,gt=0"`
	Status string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE COMPLETED CANCELLED"`
}

// ReportService handles read-only reporting queries
type ReportService struct {
	reportRepo report.Repository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo report.Repository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// PortfolioSummary aggregates project counts and values across all statuses
func (s *ReportService) PortfolioSummary(ctx context.Context) (*report.PortfolioSummary, error) {
	return s.reportRepo.PortfolioSummary(ctx)
}

// TopDevices ranks devices by quantity installed across project trees
func (s *ReportService) TopDevices(ctx context.Context, query TopDevicesQuery) ([]report.TopDevice, error) {
	if query.Limit <= 0 {
		query.Limit = defaultTopDevicesLimit
	}
	if query.Limit > maxTopDevicesLimit {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Report limit cannot exceed 100")
	}

	return s.reportRepo.TopDevices(ctx, report.TopDevicesFilter{
		Limit:  query.Limit,
		Status: query.Status,
	})
}
