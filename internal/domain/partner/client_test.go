package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("creates active client with lowercased email", func(t *testing.T) {
		c, err := NewClient("John Smith", "John@Example.com", "+1 555 0100", "12 Elm St")
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", c.Email)
		assert.True(t, c.IsActive)
	})

	t.Run("email is optional", func(t *testing.T) {
		_, err := NewClient("John Smith", "", "", "")
		require.NoError(t, err)
	})

	t.Run("rejects empty name and malformed email", func(t *testing.T) {
		_, err := NewClient("", "john@example.com", "", "")
		require.Error(t, err)

		_, err = NewClient("John Smith", "not-an-email", "", "")
		require.Error(t, err)
	})
}

func TestClientLifecycle(t *testing.T) {
	c, err := NewClient("John Smith", "john@example.com", "", "")
	require.NoError(t, err)

	require.Error(t, c.Activate())
	require.NoError(t, c.Deactivate())
	assert.False(t, c.IsActive)
	require.NoError(t, c.Activate())

	require.NoError(t, c.Update("Jane Smith", "jane@example.com", "+1 555 0101", "14 Elm St", "prefers mornings"))
	assert.Equal(t, "Jane Smith", c.Name)
	assert.Equal(t, 4, c.Version)
}
