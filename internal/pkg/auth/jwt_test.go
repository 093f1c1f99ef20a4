package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:   "test-secret-key",
		TokenExp:    exp,
		TokenIssuer: "bloodconnect-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	userID := uuid.New()

	token, expiresIn, err := svc.GenerateToken(userID, "donor@example.com", "student")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "donor@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "bloodconnect-test", claims.Issuer)
}

func TestJWTService_ValidateAndExtractClaims_Errors(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.ValidateAndExtractClaims("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAndExtractClaims("not.a.token")
		assert.Error(t, err)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{
			SecretKey:   "some-other-secret",
			TokenExp:    time.Hour,
			TokenIssuer: "bloodconnect-test",
		})
		token, _, err := other.GenerateToken(uuid.New(), "donor@example.com", "student")
		require.NoError(t, err)

		_, err = svc.ValidateAndExtractClaims(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestJWTService(-time.Minute)
		token, _, err := expired.GenerateToken(uuid.New(), "donor@example.com", "student")
		require.NoError(t, err)

		_, err = expired.ValidateAndExtractClaims(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	t.Run("bearer prefix", func(t *testing.T) {
		token, err := ExtractBearerToken("Bearer abc123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("bare token", func(t *testing.T) {
		token, err := ExtractBearerToken("abc123")
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("empty header", func(t *testing.T) {
		_, err := ExtractBearerToken("")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}
