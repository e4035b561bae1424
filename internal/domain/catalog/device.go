package catalog

import (
	"strings"
	"time"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DeviceStatus represents the status of a catalog device
type DeviceStatus string

const (
	DeviceStatusActive       DeviceStatus = "active"
	DeviceStatusInactive     DeviceStatus = "inactive"
	DeviceStatusDiscontinued DeviceStatus = "discontinued"
)

// Device is a catalog item: a smart-home device that can appear as a line
// item in build systems and projects. From the perspective of line items
// it is immutable reference data; items copy SellingPrice at insertion
// time and never read it live.
type Device struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Category     string          `gorm:"type:varchar(100);index"`
	Brand        string          `gorm:"type:varchar(100)"`
	Model        string          `gorm:"type:varchar(100)"`
	Description  string          `gorm:"type:text"`
	CostPrice    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Status       DeviceStatus    `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Device) TableName() string {
	return "devices"
}

// NewDevice creates a new catalog device
func NewDevice(code, name, category, brand, model string) (*Device, error) {
	if err := validateDeviceCode(code); err != nil {
		return nil, err
	}
	if err := validateDeviceName(name); err != nil {
		return nil, err
	}

	return &Device{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Category:          category,
		Brand:             brand,
		Model:             model,
		CostPrice:         decimal.Zero,
		SellingPrice:      decimal.Zero,
		Status:            DeviceStatusActive,
	}, nil
}

// Update updates the device's descriptive fields
func (d *Device) Update(name, category, brand, model, description string) error {
	if err := validateDeviceName(name); err != nil {
		return err
	}
	d.Name = name
	d.Category = category
	d.Brand = brand
	d.Model = model
	d.Description = description
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// SetPrices updates cost and selling price. Existing line items keep their
// snapshotted prices; only new items pick this up.
func (d *Device) SetPrices(costPrice, sellingPrice valueobject.Money) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	d.CostPrice = costPrice.Amount()
	d.SellingPrice = sellingPrice.Amount()
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// Activate makes the device selectable in new trees
func (d *Device) Activate() error {
	if d.Status == DeviceStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Device is already active")
	}
	d.Status = DeviceStatusActive
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// Deactivate hides the device from new trees; existing line items keep it
func (d *Device) Deactivate() error {
	if d.Status == DeviceStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Device is already inactive")
	}
	d.Status = DeviceStatusInactive
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// Discontinue permanently retires the device
func (d *Device) Discontinue() error {
	if d.Status == DeviceStatusDiscontinued {
		return shared.NewDomainError("INVALID_STATE", "Device is already discontinued")
	}
	d.Status = DeviceStatusDiscontinued
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// IsActive returns true if the device can be referenced by new line items
func (d *Device) IsActive() bool {
	return d.Status == DeviceStatusActive
}

func validateDeviceCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Device code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Device code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Device code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateDeviceName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Device name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Device name cannot exceed 200 characters")
	}
	return nil
}
