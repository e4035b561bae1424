package identity

import (
	"slices"
	"time"

	"github.com/homeops/backend/internal/domain/shared"
)

// Permission strings understood by the API
const (
	PermCatalogWrite  = "catalog:write"
	PermClientsWrite  = "clients:write"
	PermPlansWrite    = "plans:write"
	PermProjectsWrite = "projects:write"
	PermUsersManage   = "users:manage"
	PermReportsRead   = "reports:read"
)

// Role groups permissions for assignment to users
type Role struct {
	shared.BaseAggregateRoot
	Name        string   `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string   `gorm:"type:text"`
	Permissions []string `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// NewRole creates a new role
func NewRole(name, description string, permissions []string) (*Role, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Role name cannot exceed 100 characters")
	}
	return &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Permissions:       permissions,
	}, nil
}

// Update updates the role's description and permissions
func (r *Role) Update(description string, permissions []string) {
	r.Description = description
	r.Permissions = permissions
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// HasPermission checks whether the role grants a permission
func (r *Role) HasPermission(perm string) bool {
	return slices.Contains(r.Permissions, perm)
}
