package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProjectRepository implements ProjectRepository using GORM, with the
// same whole-tree transaction contract as GormBuildSystemRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by ID with its full tree loaded
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.Project, error) {
	var p plan.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	tree, err := loadLocationTree(r.db.WithContext(ctx), p.ID, plan.KindProject)
	if err != nil {
		return nil, err
	}
	p.Locations = tree.Roots
	return &p, nil
}

// FindAll finds projects matching the filter, trees not loaded
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]plan.Project, error) {
	var projects []plan.Project
	query := r.applyFilter(r.db.WithContext(ctx).Model(&plan.Project{}), filter)

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// FindByClient finds projects for a client, trees not loaded
func (r *GormProjectRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]plan.Project, error) {
	var projects []plan.Project
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&plan.Project{}).Where("client_id = ?", clientID),
		filter,
	)

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&plan.Project{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or fully replaces a project and its tree
func (r *GormProjectRepository) Save(ctx context.Context, p *plan.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return saveLocationTree(tx, p.ID, plan.KindProject, p.Locations)
	})
}

// Delete deletes a project, cascading to locations and line items
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteLocationTree(tx, id, plan.KindProject); err != nil {
			return err
		}
		result := tx.Delete(&plan.Project{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormProjectRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProjectSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormProjectRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR client_name ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}

	return query
}

// Ensure GormProjectRepository implements ProjectRepository
var _ plan.ProjectRepository = (*GormProjectRepository)(nil)
