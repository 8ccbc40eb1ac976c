package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/activity-report/internal/domain/auth"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/response"
	"github.com/cmlabs-hris/activity-report/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const roleKey contextKey = "role"

// SessionRole returns the role of a verified, unrevoked session.
func SessionRole(r *http.Request, jwtService jwt.Service) (auth.Role, bool) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return "", false
	}
	if jwtService.IsTokenRevoked(jwt.TokenFromSessionCookie(r)) {
		return "", false
	}
	return jwt.RoleFromClaims(claims)
}

// RoleFromContext returns the role stored by RequireRoles.
func RoleFromContext(ctx context.Context) auth.Role {
	role, _ := ctx.Value(roleKey).(auth.Role)
	return role
}

// WithRole stores role on ctx.
func WithRole(ctx context.Context, role auth.Role) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func allowed(role auth.Role, roles []auth.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRoles sends pages to the login screen unless the session role is one of roles.
func RequireRoles(jwtService jwt.Service, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := SessionRole(r, jwtService)
			if !ok || !allowed(role, roles) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// RequireRolesJSON is RequireRoles for the JSON API.
func RequireRolesJSON(jwtService jwt.Service, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := SessionRole(r, jwtService)
			if !ok {
				response.Unauthorized(w, "Login required")
				return
			}
			if !allowed(role, roles) {
				response.Forbidden(w, "Insufficient permissions: role '"+string(role)+"' is not allowed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}
