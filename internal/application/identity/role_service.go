package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/identity"
	"github.com/homeops/backend/internal/domain/shared"
)

// RoleService handles role management operations
type RoleService struct {
	roleRepo identity.RoleRepository
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo identity.RoleRepository) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
	}
}

// Create creates a new role
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	if existing, err := s.roleRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Role with this name already exists")
	} else if err != nil && err != shared.ErrNotFound {
		return nil, err
	}

	role, err := identity.NewRole(req.Name, req.Description, req.Permissions)
	if err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, roleID uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// List retrieves all roles
func (s *RoleService) List(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToRoleResponses(roles), nil
}

// Update updates a role's description and permissions
func (s *RoleService) Update(ctx context.Context, roleID uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	description := role.Description
	permissions := role.Permissions
	if req.Description != nil {
		description = *req.Description
	}
	if req.Permissions != nil {
		permissions = *req.Permissions
	}
	role.Update(description, permissions)

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// Delete removes a role. The repository rejects deletion while any user
// still holds the role.
func (s *RoleService) Delete(ctx context.Context, roleID uuid.UUID) error {
	return s.roleRepo.Delete(ctx, roleID)
}
