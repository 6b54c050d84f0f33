// internal/domain/user/service.go
package user

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
	"github.com/sellasticpots/shop-backend/internal/pkg/auth"
)

// Service handles user account business logic
type Service struct {
	db       *gorm.DB
	password *auth.PasswordManager
	jwt      *auth.JWTManager
	logger   *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, passwordManager *auth.PasswordManager, jwtManager *auth.JWTManager, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		password: passwordManager,
		jwt:      jwtManager,
		logger:   logger,
	}
}

// RegisterRequest carries a new account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest carries profile changes
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

// AuthResponse is returned on successful register, login and refresh
type AuthResponse struct {
	User   User            `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// Register creates a new user account and returns tokens for it
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.NewBackend("check existing user", err)
	}
	if count > 0 {
		return nil, apperr.ErrDuplicate
	}

	hash, err := s.password.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.NewValidation("password", err.Error())
	}

	u := &User{
		Email:    email,
		Password: hash,
		Username: strings.TrimSpace(req.Username),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		IsActive: true,
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, apperr.NewBackend("create user", err)
	}

	s.logger.WithField("email", u.Email).Info("User registered")
	return s.authResponse(u)
}

// Login verifies credentials and returns tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrAuthRequired
		}
		return nil, apperr.NewBackend("look up user", err)
	}

	if !u.IsActive {
		return nil, apperr.ErrAuthRequired
	}
	if err := s.password.VerifyPassword(u.Password, req.Password); err != nil {
		return nil, apperr.ErrAuthRequired
	}

	s.logger.WithField("email", u.Email).Info("User logged in")
	return s.authResponse(&u)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(req *RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperr.ErrAuthRequired
	}

	var u User
	if err := s.db.First(&u, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrAuthRequired
		}
		return nil, apperr.NewBackend("look up user", err)
	}
	if !u.IsActive {
		return nil, apperr.ErrAuthRequired
	}

	return s.authResponse(&u)
}

// GetProfile returns the user's profile
func (s *Service) GetProfile(userID uint) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewBackend("get user", err)
	}
	return &u, nil
}

// UpdateProfile applies the provided profile changes
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	u, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.db.Save(u).Error; err != nil {
		return nil, apperr.NewBackend("update profile", err)
	}
	return u, nil
}

func (s *Service) authResponse(u *User) (*AuthResponse, error) {
	tokens, err := s.jwt.GenerateTokenPair(u.ID, u.Email, u.DisplayName(), u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &AuthResponse{User: *u, Tokens: tokens}, nil
}
