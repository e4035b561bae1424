// Package catalog implements application services for the device catalog.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/domain/shared/valueobject"
)

// DeviceService handles device catalog operations
type DeviceService struct {
	deviceRepo catalog.DeviceRepository
}

// NewDeviceService creates a new DeviceService
func NewDeviceService(deviceRepo catalog.DeviceRepository) *DeviceService {
	return &DeviceService{
		deviceRepo: deviceRepo,
	}
}

// Create creates a new catalog device
func (s *DeviceService) Create(ctx context.Context, req CreateDeviceRequest) (*DeviceResponse, error) {
	exists, err := s.deviceRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Device with this code already exists")
	}

	device, err := catalog.NewDevice(req.Code, req.Name, req.Category, req.Brand, req.Model)
	if err != nil {
		return nil, err
	}
	device.Description = req.Description
	device.CreatedBy = req.CreatedBy

	if req.CostPrice != nil || req.SellingPrice != nil {
		cost := device.CostPrice
		selling := device.SellingPrice
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := device.SetPrices(valueobject.NewMoneyUSD(cost), valueobject.NewMoneyUSD(selling)); err != nil {
			return nil, err
		}
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	response := ToDeviceResponse(device)
	return &response, nil
}

// GetByID retrieves a device by ID
func (s *DeviceService) GetByID(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	response := ToDeviceResponse(device)
	return &response, nil
}

// GetByCode retrieves a device by its code
func (s *DeviceService) GetByCode(ctx context.Context, code string) (*DeviceResponse, error) {
	device, err := s.deviceRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToDeviceResponse(device)
	return &response, nil
}

// List retrieves devices with filtering and pagination
func (s *DeviceService) List(ctx context.Context, filter DeviceListFilter) ([]DeviceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Brand != "" {
		domainFilter.Filters["brand"] = filter.Brand
	}

	devices, err := s.deviceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.deviceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToDeviceResponses(devices), total, nil
}

// Update updates a device's descriptive fields and prices
func (s *DeviceService) Update(ctx context.Context, deviceID uuid.UUID, req UpdateDeviceRequest) (*DeviceResponse, error) {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	name := device.Name
	category := device.Category
	brand := device.Brand
	model := device.Model
	description := device.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Brand != nil {
		brand = *req.Brand
	}
	if req.Model != nil {
		model = *req.Model
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := device.Update(name, category, brand, model, description); err != nil {
		return nil, err
	}

	if req.CostPrice != nil || req.SellingPrice != nil {
		cost := device.CostPrice
		selling := device.SellingPrice
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := device.SetPrices(valueobject.NewMoneyUSD(cost), valueobject.NewMoneyUSD(selling)); err != nil {
			return nil, err
		}
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	response := ToDeviceResponse(device)
	return &response, nil
}

// Activate makes a device selectable in new trees
func (s *DeviceService) Activate(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	return s.transition(ctx, deviceID, (*catalog.Device).Activate)
}

// Deactivate hides a device from new trees
func (s *DeviceService) Deactivate(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	return s.transition(ctx, deviceID, (*catalog.Device).Deactivate)
}

// Discontinue permanently retires a device
func (s *DeviceService) Discontinue(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	return s.transition(ctx, deviceID, (*catalog.Device).Discontinue)
}

func (s *DeviceService) transition(ctx context.Context, deviceID uuid.UUID, op func(*catalog.Device) error) (*DeviceResponse, error) {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := op(device); err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	response := ToDeviceResponse(device)
	return &response, nil
}

// Delete removes a device from the catalog. Existing line items keep their
// snapshotted name, code, and price.
func (s *DeviceService) Delete(ctx context.Context, deviceID uuid.UUID) error {
	return s.deviceRepo.Delete(ctx, deviceID)
}
