package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "salespos-api", time.Hour)
	token, exp, err := m.GenerateAccessToken("admin", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Subject)

	other := NewJWTManager("other-secret", "salespos-api", time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("secret", "salespos-api", -time.Minute)
	token, _, err := m.GenerateAccessToken("admin", RoleAdmin)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTransactionIDsAreUniqueAndOrdered(t *testing.T) {
	a, err := NewTransactionID()
	require.NoError(t, err)
	b, err := NewTransactionID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 8)
	assert.True(t, len(a) < len(b) || a < b)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("1234")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("1234", hash))
	assert.False(t, CheckPasswordHash("4321", hash))
}
