package plan

import (
	"context"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BuildSystemRepository defines the interface for build system persistence.
// Save replaces the aggregate row, its whole location tree, and the cached
// total in one transaction; partial trees are never persisted.
type BuildSystemRepository interface {
	// FindByID finds a build system by ID with its full tree loaded
	FindByID(ctx context.Context, id uuid.UUID) (*BuildSystem, error)

	// FindAll finds build systems matching the filter, trees not loaded
	FindAll(ctx context.Context, filter shared.Filter) ([]BuildSystem, error)

	// Count counts build systems matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or fully replaces a build system and its tree
	Save(ctx context.Context, bs *BuildSystem) error

	// Delete deletes a build system, cascading to locations and line items
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository defines the interface for project persistence with the
// same whole-tree transaction contract as BuildSystemRepository
type ProjectRepository interface {
	// FindByID finds a project by ID with its full tree loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindAll finds projects matching the filter, trees not loaded
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, error)

	// FindByClient finds projects for a client, trees not loaded
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Project, error)

	// Count counts projects matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or fully replaces a project and its tree
	Save(ctx context.Context, p *Project) error

	// Delete deletes a project, cascading to locations and line items
	Delete(ctx context.Context, id uuid.UUID) error
}
