package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/monsoonshop/monsoon-backend/pkg/auth"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/security"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "monsoon", ExpirationMinutes: 30}
}

func testAdmin(t *testing.T, password string) config.AdminConfig {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	return config.AdminConfig{Email: "ops@monsoon.example", PasswordHash: hash}
}

func TestLoginIssuesToken(t *testing.T) {
	svc, err := NewService(testAdmin(t, "correct horse"), testJWT(), false)
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "OPS@monsoon.example", "correct horse")
	require.NoError(t, err)

	claims, err := pkgauth.ParseAdminToken(testJWT(), token)
	require.NoError(t, err)
	assert.Equal(t, "ops@monsoon.example", claims.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, err := NewService(testAdmin(t, "correct horse"), testJWT(), false)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ops@monsoon.example", "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, err := NewService(testAdmin(t, "correct horse"), testJWT(), false)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "intruder@example.com", "correct horse")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestDevPlainPasswordFallback(t *testing.T) {
	admin := config.AdminConfig{Email: "ops@monsoon.example", PasswordPlain: "dev-only"}

	_, err := NewService(admin, testJWT(), false)
	require.Error(t, err, "plain password refused outside dev")

	svc, err := NewService(admin, testJWT(), true)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ops@monsoon.example", "dev-only")
	require.NoError(t, err)
}
