package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/monsoonshop/monsoon-backend/api/responses"
	pkgAuth "github.com/monsoonshop/monsoon-backend/pkg/auth"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

type ctxKey string

const ctxAdminEmail ctxKey = "admin_email"

// AdminAuth validates the back-office bearer token and seeds the request
// context with the operator identity.
func AdminAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAdminToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxAdminEmail, claims.Email)
			if logg != nil {
				ctx = logg.WithField(ctx, "admin_email", claims.Email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminEmailFromContext returns the authenticated operator email, if any.
func AdminEmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(ctxAdminEmail).(string); ok {
		return email
	}
	return ""
}
