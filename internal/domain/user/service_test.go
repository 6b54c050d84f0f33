// internal/domain/user/service_test.go
package user

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
	"github.com/sellasticpots/shop-backend/internal/pkg/auth"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{}
	cfg.App.Name = "shop-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-for-tests"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewService(db, auth.NewPasswordManager(4), auth.NewJWTManager(cfg), log)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupService(t)

	resp, err := svc.Register(&RegisterRequest{
		Email:    "Asha@Example.com",
		Password: "secret123",
		FullName: "Asha Rao",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	login, err := svc.Login(&LoginRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(&RegisterRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{Email: "ASHA@example.com", Password: "other1234"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(&RegisterRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
}

func TestRefresh(t *testing.T) {
	svc := setupService(t)

	resp, err := svc.Register(&RegisterRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(&RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := setupService(t)

	resp, err := svc.Register(&RegisterRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Refresh(&RefreshRequest{RefreshToken: resp.Tokens.AccessToken})
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
}

func TestUpdateProfile(t *testing.T) {
	svc := setupService(t)

	resp, err := svc.Register(&RegisterRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	name := "Asha R."
	phone := "9876543210"
	updated, err := svc.UpdateProfile(resp.User.ID, &UpdateProfileRequest{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", updated.FullName)
	assert.Equal(t, "9876543210", updated.Phone)

	// Fields not included in the request stay untouched.
	again, err := svc.UpdateProfile(resp.User.ID, &UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", again.FullName)
}

func TestDisplayNameFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{FullName: "Asha Rao", Username: "asha_r", Email: "asha@example.com"}, "Asha Rao"},
		{"username", User{Username: "asha_r", Email: "asha@example.com"}, "asha_r"},
		{"email local part", User{Email: "asha@example.com"}, "asha"},
		{"nothing usable", User{}, "Anonymous User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}
