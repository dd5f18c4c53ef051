package service

import (
	"context"
	"time"

	"github.com/sangkips/salespos-api/pkg/apperror"
	"github.com/sangkips/salespos-api/pkg/utils"
)

// AdminSubject is the token subject for the shop owner
const AdminSubject = "admin"

// AuthService handles admin PIN login
type AuthService struct {
	pinHash    string
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service. When pinHash is empty the plain
// PIN is hashed once at startup.
func NewAuthService(pin, pinHash string, jwtManager *utils.JWTManager) (*AuthService, error) {
	if pinHash == "" {
		hashed, err := utils.HashPassword(pin)
		if err != nil {
			return nil, err
		}
		pinHash = hashed
	}
	return &AuthService{pinHash: pinHash, jwtManager: jwtManager}, nil
}

// LoginOutput represents the login output
type LoginOutput struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges the admin PIN for an access token
func (s *AuthService) Login(ctx context.Context, pin string) (*LoginOutput, error) {
	if pin == "" || !utils.CheckPasswordHash(pin, s.pinHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtManager.GenerateAccessToken(AdminSubject, utils.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}
