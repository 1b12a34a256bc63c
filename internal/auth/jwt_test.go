package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("user-1", "sam@example.com", []string{"user", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sam@example.com", claims.Email)
	assert.Equal(t, []string{"user", "admin"}, claims.Roles)
	assert.NotEmpty(t, claims.JTI)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.GenerateAccessToken("user-1", "sam@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateAccessToken("user-1", "sam@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.VerifyAccessToken("not-a-jwt")
	assert.Error(t, err)
}
