package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultTopDevicesLimit bounds the top-devices report when no limit is given
const DefaultTopDevicesLimit = 10

// GormReportRepository implements report.Repository using raw SQL aggregates
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// PortfolioSummary aggregates project counts and values by status
func (r *GormReportRepository) PortfolioSummary(ctx context.Context) (*report.PortfolioSummary, error) {
	type statusRow struct {
		Status     string
		Count      int64
		TotalValue decimal.Decimal
	}

	var rows []statusRow
	err := r.db.WithContext(ctx).
		Table("projects").
		Select("status, COUNT(*) as count, COALESCE(SUM(total_cost), 0) as total_value").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &report.PortfolioSummary{
		TotalValue:    decimal.Zero,
		PipelineValue: decimal.Zero,
		ByStatus:      make([]report.StatusCount, 0, len(rows)),
	}
	for _, row := range rows {
		summary.TotalProjects += row.Count
		summary.TotalValue = summary.TotalValue.Add(row.TotalValue)
		if row.Status == string(plan.ProjectStatusDraft) || row.Status == string(plan.ProjectStatusActive) {
			summary.PipelineValue = summary.PipelineValue.Add(row.TotalValue)
		}
		summary.ByStatus = append(summary.ByStatus, report.StatusCount{
			Status:     row.Status,
			Count:      row.Count,
			TotalValue: row.TotalValue,
		})
	}
	return summary, nil
}

// TopDevices aggregates device quantity and value across project trees
func (r *GormReportRepository) TopDevices(ctx context.Context, filter report.TopDevicesFilter) ([]report.TopDevice, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultTopDevicesLimit
	}

	type deviceRow struct {
		DeviceID      uuid.UUID
		DeviceName    string
		DeviceCode    string
		TotalQuantity int64
		TotalValue    decimal.Decimal
	}

	query := r.db.WithContext(ctx).
		Table("line_items li").
		Select(`
			li.device_id,
			li.device_name,
			li.device_code,
			COALESCE(SUM(li.quantity), 0) as total_quantity,
			COALESCE(SUM(li.quantity * li.unit_price), 0) as total_value
		`).
		Joins("JOIN locations l ON l.id = li.location_id").
		Joins("JOIN projects p ON p.id = l.aggregate_id").
		Where("l.aggregate_kind = ?", plan.KindProject)

	if filter.Status != "" {
		query = query.Where("p.status = ?", filter.Status)
	}

	var rows []deviceRow
	err := query.
		Group("li.device_id, li.device_name, li.device_code").
		Order("total_value DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	devices := make([]report.TopDevice, len(rows))
	for i, row := range rows {
		devices[i] = report.TopDevice{
			DeviceID:      row.DeviceID,
			DeviceName:    row.DeviceName,
			DeviceCode:    row.DeviceCode,
			TotalQuantity: row.TotalQuantity,
			TotalValue:    row.TotalValue,
		}
	}
	return devices, nil
}

// Ensure GormReportRepository implements report.Repository
var _ report.Repository = (*GormReportRepository)(nil)
