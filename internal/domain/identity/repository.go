package identity

import (
	"context"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Role, error)
	Save(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}
