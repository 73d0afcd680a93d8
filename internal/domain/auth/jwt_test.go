package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	user := NewUser("registrar1", "hash", "Front Desk", RoleRegistrar)

	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, "registrar1", uc.Username)
	assert.Equal(t, []string{RoleRegistrar}, uc.Roles)
	assert.False(t, uc.IsAdmin)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))
	user := NewUser("admin1", "hash", "Admin", RoleAdmin)

	token, _, err := issuer.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestUser_Lockout(t *testing.T) {
	user := NewUser("registrar1", "hash", "Front Desk", RoleRegistrar)

	for i := 0; i < 4; i++ {
		user.RecordFailedLogin(5, 15*time.Minute)
		assert.False(t, user.IsLocked())
	}

	user.RecordFailedLogin(5, 15*time.Minute)
	assert.True(t, user.IsLocked())
	require.Error(t, user.CanLogin())

	user.RecordSuccessfulLogin()
	assert.False(t, user.IsLocked())
	require.NoError(t, user.CanLogin())
}
