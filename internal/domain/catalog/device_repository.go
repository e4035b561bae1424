package catalog

import (
	"context"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeviceRepository defines the interface for device catalog persistence
type DeviceRepository interface {
	// FindByID finds a device by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Device, error)

	// FindByIDs finds all devices for the given IDs; missing IDs are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Device, error)

	// FindByCode finds a device by its code
	FindByCode(ctx context.Context, code string) (*Device, error)

	// FindAll finds devices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Device, error)

	// Count counts devices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a device with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates a device
	Save(ctx context.Context, device *Device) error

	// Delete deletes a device
	Delete(ctx context.Context, id uuid.UUID) error
}
