package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/homeops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormDeviceRepository implements DeviceRepository using GORM
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GormDeviceRepository
func NewGormDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// FindByID finds a device by its ID
func (r *GormDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Device, error) {
	var device catalog.Device
	if err := r.db.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// FindByIDs finds all devices for the given IDs; missing IDs are simply absent
func (r *GormDeviceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Device, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var devices []catalog.Device
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// FindByCode finds a device by its code
func (r *GormDeviceRepository) FindByCode(ctx context.Context, code string) (*catalog.Device, error) {
	var device catalog.Device
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// FindAll finds devices matching the filter
func (r *GormDeviceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Device, error) {
	var devices []catalog.Device
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Device{}), filter)

	if err := query.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// Count counts devices matching the filter
func (r *GormDeviceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Device{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a device with the given code exists
func (r *GormDeviceRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Device{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a device
func (r *GormDeviceRepository) Save(ctx context.Context, device *catalog.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}

// Delete deletes a device
func (r *GormDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Device{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormDeviceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DeviceSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormDeviceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR brand ILIKE ?", pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "brand":
			query = query.Where("brand = ?", value)
		}
	}

	return query
}

// Ensure GormDeviceRepository implements DeviceRepository
var _ catalog.DeviceRepository = (*GormDeviceRepository)(nil)
