package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", 8*time.Hour)
	id := uuid.New()

	token, err := svc.Issue(id, RoleAdmin)
	require.NoError(t, err)

	principal, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, principal.ID)
	assert.Equal(t, RoleAdmin, principal.Role)
}

func TestVerify_Rejections(t *testing.T) {
	svc := NewService("test-secret", 8*time.Hour)
	id := uuid.New()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService("other-secret", 8*time.Hour)
		token, err := other.Issue(id, RoleUser)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewService("test-secret", -time.Minute)
		token, err := short.Issue(id, RoleUser)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))
}
