package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "student@example.com", "student")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
}

func TestJWTServiceRejects(t *testing.T) {
	svc := NewJWTService("test-secret", 1)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewJWTService("other-secret", 1)
		token, err := other.Generate(uuid.New(), "a@b.c", "admin")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTService("test-secret", -1)
		token, err := expired.Generate(uuid.New(), "a@b.c", "student")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
