package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, exp, err := m.GenerateAccessToken("user-1", "admin", ScopeFull, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, ScopeFull, claims.Scope)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokenTTLOverride(t *testing.T) {
	m := testManager()

	_, exp, err := m.GenerateAccessToken("user-1", "user", ScopePasswordReset, 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)
}

func TestRefreshTokenCarriesJTI(t *testing.T) {
	m := testManager()

	token, jti, _, err := m.GenerateRefreshToken("user-1", "user", ScopeFull)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := testManager()
	other := NewJWTManager("different", "different", time.Hour, 24*time.Hour)

	token, _, err := m.GenerateAccessToken("user-1", "user", ScopeFull, 0)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestParseRejectsCrossedSecrets(t *testing.T) {
	m := testManager()

	access, _, err := m.GenerateAccessToken("user-1", "user", ScopeFull, 0)
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	// a non-positive ttl argument falls back to the manager default, so use a
	// manager whose default is already in the past
	short := NewJWTManager("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)
	expired, _, err := short.GenerateAccessToken("user-1", "user", ScopeFull, 0)
	require.NoError(t, err)

	_, err = short.ParseAccessToken(expired)
	assert.Error(t, err)
}
