package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
)

type RoleAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRoleAuthorization(baseHandler *transport.BaseHandler) *RoleAuthorization {
	return &RoleAuthorization{
		BaseHandler: baseHandler,
		logger:      baseHandler.Logger,
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
func (ra *RoleAuthorization) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: user not found in context")
				ra.HandleServiceError(w, r, internal.ErrMissingToken)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.logger.WarnContext(r.Context(), "access denied: role not allowed",
				"user_id", user.ID,
				"role", user.Role,
				"required_roles", roles)
			ra.HandleServiceError(w, r, internal.ErrManagerOnly)
		})
	}
}

func (ra *RoleAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.RequireRole(internal.RoleManager)
}
