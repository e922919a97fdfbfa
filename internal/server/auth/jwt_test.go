package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("session-1", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := GetSessionIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)
}

func TestGetSessionIDFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("session-1", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = GetSessionIDFromToken(token, []byte("secret-b"))
	assert.Error(t, err)
}

func TestGetSessionIDFromToken_Expired(t *testing.T) {
	token, err := GenerateToken("session-1", []byte("secret"), -time.Minute)
	require.NoError(t, err)

	_, err = GetSessionIDFromToken(token, []byte("secret"))
	assert.Error(t, err)
}

func TestGetSessionIDFromToken_Garbage(t *testing.T) {
	_, err := GetSessionIDFromToken("not.a.token", []byte("secret"))
	assert.Error(t, err)
}
