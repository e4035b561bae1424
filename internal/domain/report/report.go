package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusCount holds project count and value aggregated for one status
type StatusCount struct {
	Status     string          `json:"status"`
	Count      int64           `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// PortfolioSummary aggregates the whole project portfolio
type PortfolioSummary struct {
	TotalProjects int64           `json:"total_projects"`
	TotalValue    decimal.Decimal `json:"total_value"`
	PipelineValue decimal.Decimal `json:"pipeline_value"` // DRAFT and ACTIVE projects only
	ByStatus      []StatusCount   `json:"by_status"`
}

// TopDevice aggregates one device's usage across all project trees
type TopDevice struct {
	DeviceID      uuid.UUID       `json:"device_id"`
	DeviceName    string          `json:"device_name"`
	DeviceCode    string          `json:"device_code"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// TopDevicesFilter narrows the top-devices report
type TopDevicesFilter struct {
	Limit  int
	Status string // optional project status filter
}

// Repository defines SQL-backed reporting queries over project data
type Repository interface {
	// PortfolioSummary aggregates project counts and values by status
	PortfolioSummary(ctx context.Context) (*PortfolioSummary, error)

	// TopDevices aggregates device quantity and value across project trees
	TopDevices(ctx context.Context, filter TopDevicesFilter) ([]TopDevice, error)
}
