// Package service issues and checks the admin tokens that guard credential
// management routes.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

const (
	// AdminTokenTTL is the default lifetime of a minted admin token
	AdminTokenTTL = 24 * time.Hour

	RoleAdmin = "admin"

	minSecretLength = 32
)

var (
	ErrSecretTooShort = fmt.Errorf("admin secret must be at least %d characters", minSecretLength)
	ErrNotAdmin       = errors.New("token does not carry the admin role")
)

// Service signs and validates HS256 admin tokens
type Service struct {
	jwtSecret []byte
}

func New(secret string) (*Service, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	return &Service{jwtSecret: []byte(secret)}, nil
}

// GenerateAdminToken mints a token for subject valid for ttl
func (s *Service) GenerateAdminToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		ttl = AdminTokenTTL
	}
	claims := map[string]any{
		"role": RoleAdmin,
		"jti":  uuid.NewString(),
	}
	return auth.GenerateHS256Token(s.jwtSecret, subject, claims, ttl)
}

// ValidateToken verifies the signature and expiry, then requires the admin role
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	subject, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", nil, err
	}
	if role, _ := claims["role"].(string); role != RoleAdmin {
		return "", nil, ErrNotAdmin
	}
	return subject, claims, nil
}
