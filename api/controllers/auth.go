package controllers

import (
	"fmt"
	"net"
	"net/http"

	"github.com/monsoonshop/monsoon-backend/api/responses"
	"github.com/monsoonshop/monsoon-backend/api/validators"
	authsvc "github.com/monsoonshop/monsoon-backend/internal/auth"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
	"github.com/monsoonshop/monsoon-backend/pkg/redis"
)

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
}

// AdminAuthLogin authenticates the back-office operator. Attempts are rate
// limited per client IP through a redis fixed window.
func AdminAuthLogin(svc authsvc.Service, admin config.AdminConfig, limiter *redis.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if limiter != nil {
			scope := fmt.Sprintf("admin_login:%s", clientIP(r))
			allowed, _, err := limiter.FixedWindowAllow(ctx, scope, int64(admin.LoginIPLimit), admin.LoginWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check"))
				return
			}
			if !allowed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
				return
			}
		}

		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token, err := svc.Login(ctx, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, adminLoginResponse{Token: token})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
