package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	roleID := "role-support"
	session := UserSession{
		ID:     "u1",
		Name:   "Dana",
		Email:  "dana@example.com",
		RoleID: &roleID,
	}

	token, err := GenerateToken(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.User.ID)
	assert.Equal(t, "dana@example.com", claims.User.Email)
	require.NotNil(t, claims.User.RoleID)
	assert.Equal(t, "role-support", *claims.User.RoleID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = ValidateToken("")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, VerifyPassword("hunter2hunter2", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}
