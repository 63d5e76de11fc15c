package middleware

import (
	"net/http"

	"github.com/rapPayne/online-store-server/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequireAdmin ensures the caller has the admin role.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := GetCaller(r.Context())
			if !ok {
				logger.Warn("Caller not found in context")
				respondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			if !caller.IsAdmin() {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("username", caller.Username),
					zap.String("role", caller.Role),
				)
				respondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminOrSelf ensures the caller is an admin or is accessing the
// account named by the {username} route parameter.
func RequireAdminOrSelf(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := GetCaller(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			username := chi.URLParam(r, "username")
			if caller.Role != domain.RoleAdmin && caller.Username != username {
				logger.Warn("User attempted to access another user's data",
					zap.String("username", caller.Username),
					zap.String("target", username),
				)
				respondWithError(w, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
