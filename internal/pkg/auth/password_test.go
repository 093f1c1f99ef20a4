package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret!", hash)

	assert.True(t, CheckPassword(hash, "Sup3rSecret!"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "Sup3rSecret!"))
}

func TestGenerateTempPassword(t *testing.T) {
	t.Run("requested length", func(t *testing.T) {
		pw, err := GenerateTempPassword(16)
		require.NoError(t, err)
		assert.Len(t, pw, 16)
	})

	t.Run("defaults when length is not positive", func(t *testing.T) {
		pw, err := GenerateTempPassword(0)
		require.NoError(t, err)
		assert.Len(t, pw, 12)
	})

	t.Run("two passwords differ", func(t *testing.T) {
		a, err := GenerateTempPassword(16)
		require.NoError(t, err)
		b, err := GenerateTempPassword(16)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}
