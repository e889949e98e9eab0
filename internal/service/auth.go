package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/mockprep/mockprep-go/internal/crypto"
	"github.com/mockprep/mockprep-go/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// AuthService authenticates the single configured admin account.
type AuthService struct {
	adminEmail   string
	passwordHash string
	jwtSecret    string
	jwtExpiry    time.Duration
}

// NewAuthService creates a new AuthService. passwordHash is an Argon2id PHC
// string; when it is empty every login fails.
func NewAuthService(adminEmail, passwordHash, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		adminEmail:   strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash: passwordHash,
		jwtSecret:    secret,
		jwtExpiry:    expiry,
	}
}

// Login checks the admin credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AdminLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return model.AdminLoginResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AdminLoginResponse{}, ErrPasswordRequired
	}

	// Verify the password even for an unknown email so both paths cost the same.
	match, err := crypto.VerifyPassword(req.Password, s.passwordHash)
	if err != nil {
		return model.AdminLoginResponse{}, err
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	if !match || !emailOK {
		return model.AdminLoginResponse{}, ErrInvalidCredentials
	}

	token, expiresAt, err := crypto.GenerateToken(email, crypto.RoleAdmin, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AdminLoginResponse{}, err
	}

	return model.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}
