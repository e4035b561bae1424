package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		u, err := NewUser("JDoe", "JDoe@Example.com", "Jane Doe", "s3cret-password")
		require.NoError(t, err)

		assert.Equal(t, "jdoe", u.Username)
		assert.Equal(t, "jdoe@example.com", u.Email)
		assert.NotEqual(t, "s3cret-password", u.PasswordHash)
		assert.True(t, u.CheckPassword("s3cret-password"))
		assert.False(t, u.CheckPassword("wrong"))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := NewUser("jdoe", "jdoe@example.com", "Jane Doe", "short")
		require.Error(t, err)
	})

	t.Run("rejects bad usernames and emails", func(t *testing.T) {
		_, err := NewUser("", "jdoe@example.com", "", "s3cret-password")
		require.Error(t, err)

		_, err = NewUser("jdoe", "no-at-sign", "", "s3cret-password")
		require.Error(t, err)
	})
}

func TestUserRoleAndLifecycle(t *testing.T) {
	u, err := NewUser("jdoe", "jdoe@example.com", "Jane Doe", "s3cret-password")
	require.NoError(t, err)

	roleID := uuid.New()
	u.AssignRole(roleID)
	require.NotNil(t, u.RoleID)
	assert.Equal(t, roleID, *u.RoleID)

	require.NoError(t, u.ChangePassword("another-password"))
	assert.True(t, u.CheckPassword("another-password"))

	require.NoError(t, u.Deactivate())
	assert.False(t, u.IsActive)
	require.NoError(t, u.Activate())
}

func TestRole(t *testing.T) {
	r, err := NewRole("estimator", "Builds proposals", []string{PermPlansWrite, PermProjectsWrite})
	require.NoError(t, err)

	assert.True(t, r.HasPermission(PermPlansWrite))
	assert.False(t, r.HasPermission(PermUsersManage))

	r.Update("Builds and prices proposals", []string{PermPlansWrite})
	assert.False(t, r.HasPermission(PermProjectsWrite))

	_, err = NewRole("", "", nil)
	require.Error(t, err)
}
