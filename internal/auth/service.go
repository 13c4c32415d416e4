package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/monsoonshop/monsoon-backend/pkg/auth"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/security"
)

// Service authenticates the single back-office operator configured through
// the environment and mints session tokens.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type service struct {
	admin config.AdminConfig
	jwt   config.JWTConfig
	isDev bool
	now   func() time.Time
}

// NewService builds the admin auth service. The plain-text password fallback
// is honored only outside prod.
func NewService(admin config.AdminConfig, jwt config.JWTConfig, isDev bool) (Service, error) {
	if admin.Email == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	if admin.PasswordHash == "" && !(isDev && admin.PasswordPlain != "") {
		return nil, fmt.Errorf("admin password hash is required")
	}
	return &service{admin: admin, jwt: jwt, isDev: isDev, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(email), s.admin.Email) {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	ok, err := s.verify(password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAdminToken(s.jwt, s.now(), s.admin.Email)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	return token, nil
}

func (s *service) verify(password string) (bool, error) {
	if s.admin.PasswordHash != "" {
		return security.VerifyPassword(password, s.admin.PasswordHash)
	}
	// Dev fallback only; NewService refuses this configuration in prod.
	match := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.PasswordPlain)) == 1
	return match, nil
}
