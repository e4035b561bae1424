package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/identity"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestUserService_Create(t *testing.T) {
	t.Run("creates user with role", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewUserService(userRepo, roleRepo)

		role, err := identity.NewRole("installer", "", []string{identity.PermProjectsWrite})
		require.NoError(t, err)

		userRepo.On("ExistsByUsername", mock.Anything, "casey").Return(false, nil)
		roleRepo.On("FindByID", mock.Anything, role.ID).Return(role, nil)
		userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := service.Create(context.Background(), CreateUserRequest{
			Username: "casey",
			Email:    "casey@example.com",
			FullName: "Casey Fields",
			Password: "correct-horse-battery",
			RoleID:   &role.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, "casey", resp.Username)
		require.NotNil(t, resp.RoleID)
		assert.Equal(t, role.ID, *resp.RoleID)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewUserService(userRepo, new(MockRoleRepository))

		userRepo.On("ExistsByUsername", mock.Anything, "casey").Return(true, nil)

		_, err := service.Create(context.Background(), CreateUserRequest{
			Username: "casey",
			Email:    "casey@example.com",
			Password: "correct-horse-battery",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewUserService(userRepo, roleRepo)

		roleID := uuid.New()
		userRepo.On("ExistsByUsername", mock.Anything, "casey").Return(false, nil)
		roleRepo.On("FindByID", mock.Anything, roleID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), CreateUserRequest{
			Username: "casey",
			Email:    "casey@example.com",
			Password: "correct-horse-battery",
			RoleID:   &roleID,
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		userRepo.AssertNotCalled(t, "Save")
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo, new(MockRoleRepository))

	user, err := identity.NewUser("casey", "casey@example.com", "", "old-password-123")
	require.NoError(t, err)

	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	require.NoError(t, service.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		Password: "new-password-456",
	}))

	assert.True(t, user.CheckPassword("new-password-456"))
	assert.False(t, user.CheckPassword("old-password-123"))
}

func TestRoleService_Create(t *testing.T) {
	t.Run("creates role", func(t *testing.T) {
		roleRepo := new(MockRoleRepository)
		service := NewRoleService(roleRepo)

		roleRepo.On("FindByName", mock.Anything, "installer").Return(nil, shared.ErrNotFound)
		roleRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Role")).Return(nil)

		resp, err := service.Create(context.Background(), CreateRoleRequest{
			Name:        "installer",
			Permissions: []string{identity.PermProjectsWrite, identity.PermPlansWrite},
		})

		require.NoError(t, err)
		assert.Equal(t, "installer", resp.Name)
		assert.Len(t, resp.Permissions, 2)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		roleRepo := new(MockRoleRepository)
		service := NewRoleService(roleRepo)

		existing, err := identity.NewRole("installer", "", nil)
		require.NoError(t, err)
		roleRepo.On("FindByName", mock.Anything, "installer").Return(existing, nil)

		_, err = service.Create(context.Background(), CreateRoleRequest{Name: "installer"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestRoleService_Delete_RoleInUse(t *testing.T) {
	roleRepo := new(MockRoleRepository)
	service := NewRoleService(roleRepo)

	id := uuid.New()
	roleRepo.On("Delete", mock.Anything, id).Return(shared.NewDomainError("ROLE_IN_USE", "Role is assigned to one or more users"))

	err := service.Delete(context.Background(), id)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ROLE_IN_USE", domainErr.Code)
}
