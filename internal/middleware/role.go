package middleware

import (
	"log/slog"
	"net/http"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/shared/errors"
	"clanstats-server/internal/shared/response"
)

// Require gates next behind authentication plus the policy for op. Every
// protected route goes through this; handlers never compare roles inline.
func Require(op auth.Operation, next http.Handler) http.Handler {
	return JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "role",
			"operation", string(op),
			"method", r.Method,
			"path", r.URL.Path,
		)

		claims := GetUserFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		if !auth.Allowed(op, claims.Role) {
			logger.Warn("User lacks role for operation",
				"user_id", claims.UserID,
				"username", claims.Username,
				"role", claims.Role)
			response.Error(w, r, logger, errors.Forbidden("insufficient permissions"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}
