package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/identity"
)

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username  string     `json:"username" binding:"required,min=3,max=100"`
	Email     string     `json:"email" binding:"required,email,max=200"`
	FullName  string     `json:"full_name" binding:"max=200"`
	Password  string     `json:"password" binding:"required,min=8,max=72"`
	RoleID    *uuid.UUID `json:"role_id"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateUserRequest represents a request to update a user's profile
type UpdateUserRequest struct {
	Email    *string    `json:"email" binding:"omitempty,email,max=200"`
	FullName *string    `json:"full_name" binding:"omitempty,max=200"`
	RoleID   *uuid.UUID `json:"role_id"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UserResponse represents a user in API responses. The password hash
// never leaves the service.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	RoleID      *uuid.UUID `json:"role_id"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// UserListFilter represents filter options for the user list
type UserListFilter struct {
	Search   string     `form:"search"`
	IsActive *bool      `form:"is_active"`
	RoleID   *uuid.UUID `form:"role_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateRoleRequest represents a request to create a role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest represents a request to update a role
type UpdateRoleRequest struct {
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		RoleID:      u.RoleID,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Version:     u.Version,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}

// ToRoleResponse converts a domain Role to RoleResponse
func ToRoleResponse(r *identity.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToRoleResponses converts a slice of roles
func ToRoleResponses(roles []identity.Role) []RoleResponse {
	responses := make([]RoleResponse, len(roles))
	for i := range roles {
		responses[i] = ToRoleResponse(&roles[i])
	}
	return responses
}
