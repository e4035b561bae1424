package plan

import (
	"time"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "DRAFT"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// IsValid checks if the status is a known ProjectStatus
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ProjectStatus
func (s ProjectStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProjectStatus) CanTransitionTo(target ProjectStatus) bool {
	switch s {
	case ProjectStatusDraft:
		return target == ProjectStatusActive || target == ProjectStatusCancelled
	case ProjectStatusActive:
		return target == ProjectStatusCompleted || target == ProjectStatusCancelled
	case ProjectStatusCompleted, ProjectStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for statuses that allow no further changes
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// ImportResult summarizes an import of a build system into a project
type ImportResult struct {
	ImportedLocations int             `json:"imported_locations"`
	CostDelta         decimal.Decimal `json:"cost_delta"`
	NewTotal          decimal.Decimal `json:"new_total"`
}

// Project is a live, billable instance of a location tree for one client.
// It shares the tree/total contract with BuildSystem and additionally has
// a lifecycle that is independent of tree shape.
type Project struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName  string          `gorm:"type:varchar(200);not null"`
	Status      ProjectStatus   `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	TotalCost   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Locations   []*Location     `gorm:"-"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new draft project for a client
func NewProject(name, description string, clientID uuid.UUID, clientName string, createdBy *uuid.UUID) (*Project, error) {
	if err := validateAggregateName(name); err != nil {
		return nil, err
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		ClientID:          clientID,
		ClientName:        clientName,
		Status:            ProjectStatusDraft,
		TotalCost:         decimal.Zero,
	}
	p.CreatedBy = createdBy
	return p, nil
}

// Tree returns the project's location tree
func (p *Project) Tree() *Tree {
	return &Tree{Roots: p.Locations}
}

// ReplaceTree swaps in a newly built tree and recomputes TotalCost from
// it as the final step. Not allowed once the project reached a terminal
// status.
func (p *Project) ReplaceTree(t *Tree) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify the tree of a completed or cancelled project")
	}
	p.Locations = t.Roots
	p.TotalCost = TreeTotal(t)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Rename updates the project's name and description
func (p *Project) Rename(name, description string) error {
	if err := validateAggregateName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// TransitionTo moves the project to a new lifecycle status
func (p *Project) TransitionTo(target ProjectStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown project status")
	}
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Cannot transition from "+p.Status.String()+" to "+target.String())
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Clone deep-copies the project's tree under a new draft project,
// preserving prices verbatim and recomputing the total independently
func (p *Project) Clone(name string, createdBy *uuid.UUID) (*Project, error) {
	clone, err := NewProject(name, p.Description, p.ClientID, p.ClientName, createdBy)
	if err != nil {
		return nil, err
	}
	for _, root := range p.Locations {
		clone.Locations = append(clone.Locations, root.cloneUnder(clone.ID, KindProject, nil, 0))
	}
	clone.TotalCost = TreeTotal(clone.Tree())
	return clone, nil
}

// ImportBuildSystem copies a build system's location tree and line items
// into this project. For each source root location the caller-supplied
// mapping picks the target project location by name; an existing location
// with that name receives the copied items, otherwise a new location is
// created. Prices are copied verbatim. The project total is then
// recomputed over the whole tree from scratch rather than incremented,
// so rounding and double-count bugs cannot compound.
func (p *Project) ImportBuildSystem(bs *BuildSystem, mapping map[uuid.UUID]string) (*ImportResult, error) {
	if bs == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Build system is required")
	}
	if !bs.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot import an inactive build system")
	}
	if p.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot import into a completed or cancelled project")
	}

	previousTotal := p.TotalCost
	imported := 0

	for _, src := range bs.Locations {
		targetName := src.Name
		if mapped, ok := mapping[src.ID]; ok && mapped != "" {
			targetName = mapped
		}

		var target *Location
		for _, root := range p.Locations {
			if root.Name == targetName {
				target = root
				break
			}
		}
		if target == nil {
			target = src.cloneUnder(p.ID, KindProject, nil, 0)
			target.Name = targetName
			target.SortOrder = len(p.Locations)
			p.Locations = append(p.Locations, target)
			imported += src.subtreeSize()
			continue
		}
		imported += src.copyInto(target)
	}

	p.TotalCost = TreeTotal(p.Tree())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return &ImportResult{
		ImportedLocations: imported,
		CostDelta:         p.TotalCost.Sub(previousTotal),
		NewTotal:          p.TotalCost,
	}, nil
}
