package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateDeviceRequest represents a request to create a catalog device
type CreateDeviceRequest struct {
	Code         string           `json:"code" binding:"required,min=1,max=50"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	Category     string           `json:"category" binding:"max=100"`
	Brand        string           `json:"brand" binding:"max=100"`
	Model        string           `json:"model" binding:"max=100"`
	Description  string           `json:"description"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	CreatedBy    *uuid.UUID       `json:"-"`
}

// UpdateDeviceRequest represents a request to update a catalog device
type UpdateDeviceRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Category     *string          `json:"category" binding:"omitempty,max=100"`
	Brand        *string          `json:"brand" binding:"omitempty,max=100"`
	Model        *string          `json:"model" binding:"omitempty,max=100"`
	Description  *string          `json:"description"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

// DeviceResponse represents a device in API responses
type DeviceResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// DeviceListFilter represents filter options for the device list
type DeviceListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive discontinued"`
	Category string `form:"category"`
	Brand    string `form:"brand"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDeviceResponse converts a domain Device to DeviceResponse
func ToDeviceResponse(d *catalog.Device) DeviceResponse {
	return DeviceResponse{
		ID:           d.ID,
		Code:         d.Code,
		Name:         d.Name,
		Category:     d.Category,
		Brand:        d.Brand,
		Model:        d.Model,
		Description:  d.Description,
		CostPrice:    d.CostPrice,
		SellingPrice: d.SellingPrice,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Version:      d.Version,
	}
}

// ToDeviceResponses converts a slice of devices
func ToDeviceResponses(devices []catalog.Device) []DeviceResponse {
	responses := make([]DeviceResponse, len(devices))
	for i := range devices {
		responses[i] = ToDeviceResponse(&devices[i])
	}
	return responses
}
