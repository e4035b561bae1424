// Package identity implements application services for users and roles.
package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/identity"
	"github.com/homeops/backend/internal/domain/shared"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, roleRepo identity.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User with this username already exists")
	}

	user, err := identity.NewUser(req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		return nil, err
	}
	user.CreatedBy = req.CreatedBy

	if req.RoleID != nil {
		if _, err := s.roleRepo.FindByID(ctx, *req.RoleID); err != nil {
			return nil, err
		}
		user.AssignRole(*req.RoleID)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}
	if filter.RoleID != nil {
		domainFilter.Filters["role_id"] = *filter.RoleID
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToUserResponses(users), total, nil
}

// Update updates a user's profile and role assignment
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := user.Email
	fullName := user.FullName
	if req.Email != nil {
		email = *req.Email
	}
	if req.FullName != nil {
		fullName = *req.FullName
	}
	if err := user.Update(email, fullName); err != nil {
		return nil, err
	}

	if req.RoleID != nil {
		if _, err := s.roleRepo.FindByID(ctx, *req.RoleID); err != nil {
			return nil, err
		}
		user.AssignRole(*req.RoleID)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword replaces the user's password hash
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.Password); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// Activate re-enables a user account
func (s *UserService) Activate(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, userID, (*identity.User).Activate)
}

// Deactivate disables a user account
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, userID, (*identity.User).Deactivate)
}

func (s *UserService) transition(ctx context.Context, userID uuid.UUID, op func(*identity.User) error) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := op(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.Delete(ctx, userID)
}
