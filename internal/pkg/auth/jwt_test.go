// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellasticpots/shop-backend/internal/config"
)

func testManager(accessExpiry time.Duration) *JWTManager {
	cfg := &config.Config{}
	cfg.App.Name = "shop-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-for-tests"
	cfg.JWT.AccessTokenExpiry = accessExpiry
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	return NewJWTManager(cfg)
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := testManager(time.Hour)

	pair, err := m.GenerateTokenPair(7, "asha@example.com", "Asha Rao", false)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "Asha Rao", claims.DisplayName)
	assert.False(t, claims.IsAdmin)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), refresh.UserID)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	m := testManager(time.Hour)

	pair, err := m.GenerateTokenPair(7, "asha@example.com", "", true)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager(-time.Minute)

	pair, err := m.GenerateTokenPair(7, "asha@example.com", "", false)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	m := testManager(time.Hour)
	other := testManager(time.Hour)
	other.secret = []byte("a-completely-different-secret-key-here")

	pair, err := other.GenerateTokenPair(7, "asha@example.com", "", false)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	pm := NewPasswordManager(4)

	hash, err := pm.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, pm.VerifyPassword(hash, "secret123"))
	assert.Error(t, pm.VerifyPassword(hash, "wrong-pass"))
}

func TestPasswordTooShort(t *testing.T) {
	pm := NewPasswordManager(4)

	_, err := pm.HashPassword("abc")
	assert.Error(t, err)
}
