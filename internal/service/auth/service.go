package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/activity-report/internal/domain/auth"
	"github.com/cmlabs-hris/activity-report/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Credentials are the plain shared passwords of the two role accounts.
type Credentials struct {
	AdminPassword  string
	ReportPassword string
}

type AuthServiceImpl struct {
	jwtService jwt.Service
	hashes     map[auth.Role][]byte
}

// NewAuthService hashes the configured passwords once so that plain
// passwords are not kept in memory after startup.
func NewAuthService(jwtService jwt.Service, creds Credentials) (auth.AuthService, error) {
	hashes := make(map[auth.Role][]byte, 2)
	for role, password := range map[auth.Role]string{
		auth.RoleAdmin:  creds.AdminPassword,
		auth.RoleReport: creds.ReportPassword,
	} {
		if password == "" {
			return nil, fmt.Errorf("password for role %s is empty", role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for role %s: %w", role, err)
		}
		hashes[role] = hash
	}

	return &AuthServiceImpl{
		jwtService: jwtService,
		hashes:     hashes,
	}, nil
}

// Login implements auth.AuthService.
func (s *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return auth.SessionResponse{}, err
	}

	role := auth.Role(req.LoginID)
	hash, ok := s.hashes[role]
	if !ok {
		slog.Warn("login with unknown id", "login_id", req.LoginID)
		return auth.SessionResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
		slog.Warn("login with wrong password", "role", role)
		return auth.SessionResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateSessionToken(role)
	if err != nil {
		return auth.SessionResponse{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	slog.Info("role logged in", "role", role)
	return auth.SessionResponse{
		Role:      role,
		Token:     token,
		ExpiresAt: expiresAt,
		Redirect:  role.HomePath(),
	}, nil
}

// Logout implements auth.AuthService.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.jwtService.RevokeToken(token)
	return nil
}
