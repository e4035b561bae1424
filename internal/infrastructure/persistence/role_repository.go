package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/identity"
	"github.com/homeops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by its ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindByName finds a role by its unique name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindAll finds roles matching the filter
func (r *GormRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	var roles []identity.Role
	query := r.db.WithContext(ctx).Model(&identity.Role{})

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, RoleSortFields, "name")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Save creates or updates a role
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// Delete deletes a role unless users still reference it
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var inUse int64
	if err := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("role_id = ?", id).
		Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return shared.NewDomainError("ROLE_IN_USE", "Role is assigned to one or more users")
	}

	result := r.db.WithContext(ctx).Delete(&identity.Role{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormRoleRepository implements RoleRepository
var _ identity.RoleRepository = (*GormRoleRepository)(nil)
