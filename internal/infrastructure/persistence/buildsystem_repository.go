package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBuildSystemRepository implements BuildSystemRepository using GORM.
// Save replaces the aggregate row and its whole location tree in one
// transaction; partial trees are never persisted.
type GormBuildSystemRepository struct {
	db *gorm.DB
}

// NewGormBuildSystemRepository creates a new GormBuildSystemRepository
func NewGormBuildSystemRepository(db *gorm.DB) *GormBuildSystemRepository {
	return &GormBuildSystemRepository{db: db}
}

// FindByID finds a build system by ID with its full tree loaded
func (r *GormBuildSystemRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.BuildSystem, error) {
	var bs plan.BuildSystem
	if err := r.db.WithContext(ctx).First(&bs, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	tree, err := loadLocationTree(r.db.WithContext(ctx), bs.ID, plan.KindBuildSystem)
	if err != nil {
		return nil, err
	}
	bs.Locations = tree.Roots
	return &bs, nil
}

// FindAll finds build systems matching the filter, trees not loaded
func (r *GormBuildSystemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]plan.BuildSystem, error) {
	var systems []plan.BuildSystem
	query := r.applyFilter(r.db.WithContext(ctx).Model(&plan.BuildSystem{}), filter)

	if err := query.Find(&systems).Error; err != nil {
		return nil, err
	}
	return systems, nil
}

// Count counts build systems matching the filter
func (r *GormBuildSystemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&plan.BuildSystem{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or fully replaces a build system and its tree
func (r *GormBuildSystemRepository) Save(ctx context.Context, bs *plan.BuildSystem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(bs).Error; err != nil {
			return err
		}
		return saveLocationTree(tx, bs.ID, plan.KindBuildSystem, bs.Locations)
	})
}

// Delete deletes a build system, cascading to locations and line items
func (r *GormBuildSystemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteLocationTree(tx, id, plan.KindBuildSystem); err != nil {
			return err
		}
		result := tx.Delete(&plan.BuildSystem{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormBuildSystemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BuildSystemSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormBuildSystemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}

// Ensure GormBuildSystemRepository implements BuildSystemRepository
var _ plan.BuildSystemRepository = (*GormBuildSystemRepository)(nil)
