package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	// hash is salted, never the plaintext
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse battery staple"))
	assert.Error(t, CheckPassword(hash, "wrong password"))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same input")
	require.NoError(t, err)

	h2, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
