package plan

import (
	"time"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAggregateNameLength is the maximum length of an aggregate name
const MaxAggregateNameLength = 200

// BuildSystem is a reusable template aggregate: a named location tree
// with device line items that can be cloned or imported into projects.
// TotalCost is a cache of TreeTotal over its tree; every mutation path
// recomputes it from scratch before persisting.
type BuildSystem struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	IsActive    bool            `gorm:"not null;default:true"`
	TotalCost   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Locations   []*Location     `gorm:"-"`
}

// TableName returns the table name for GORM
func (BuildSystem) TableName() string {
	return "build_systems"
}

// NewBuildSystem creates a new, empty build system template
func NewBuildSystem(name, description string, createdBy *uuid.UUID) (*BuildSystem, error) {
	if err := validateAggregateName(name); err != nil {
		return nil, err
	}
	bs := &BuildSystem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		IsActive:          true,
		TotalCost:         decimal.Zero,
	}
	bs.CreatedBy = createdBy
	return bs, nil
}

// Tree returns the build system's location tree
func (b *BuildSystem) Tree() *Tree {
	return &Tree{Roots: b.Locations}
}

// ReplaceTree swaps in a newly built tree and, as its final act, sets
// TotalCost from the recomputed TreeTotal. A client-supplied total is
// never copied and a stale prior total can never survive.
func (b *BuildSystem) ReplaceTree(t *Tree) {
	b.Locations = t.Roots
	b.TotalCost = TreeTotal(t)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// Rename updates the template's name and description
func (b *BuildSystem) Rename(name, description string) error {
	if err := validateAggregateName(name); err != nil {
		return err
	}
	b.Name = name
	b.Description = description
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Activate marks the template usable for imports
func (b *BuildSystem) Activate() error {
	if b.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Build system is already active")
	}
	b.IsActive = true
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Deactivate retires the template
func (b *BuildSystem) Deactivate() error {
	if !b.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Build system is already inactive")
	}
	b.IsActive = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Clone deep-copies the whole tree under a new aggregate identity,
// preserving structure and per-item prices verbatim. TotalCost is
// recomputed from the copied tree rather than taken from the source's
// cache, so pre-existing drift is never imported.
func (b *BuildSystem) Clone(name string, createdBy *uuid.UUID) (*BuildSystem, error) {
	clone, err := NewBuildSystem(name, b.Description, createdBy)
	if err != nil {
		return nil, err
	}
	for _, root := range b.Locations {
		clone.Locations = append(clone.Locations, root.cloneUnder(clone.ID, KindBuildSystem, nil, 0))
	}
	clone.TotalCost = TreeTotal(clone.Tree())
	return clone, nil
}

func validateAggregateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > MaxAggregateNameLength {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
