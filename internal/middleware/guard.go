package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zenithdocs/zenith-api/internal/apperr"
	"github.com/zenithdocs/zenith-api/internal/model"
)

// Authorization guards. Both assume JWTAuth already ran and stored an
// identity; a missing identity is an authentication failure, not an
// authorization one. Every decision goes through Role.Has so there is exactly
// one place where "what may an admin do" is written down.

// RequireCapability passes only identities whose role grants the capability.
func RequireCapability(cap model.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return apperr.Unauthorized(apperr.CodeTokenMissing, "unauthorized access")
			}
			if !id.Role.Has(cap) {
				return apperr.Forbidden("you are not authorized to access this resource")
			}
			return next(c)
		}
	}
}

// SelfOrAdmin passes when the path parameter names the requester's own
// account, or when the requester's role grants user management. It gates
// per-user resources without a full ACL system.
func SelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return apperr.Unauthorized(apperr.CodeTokenMissing, "unauthorized access")
			}
			target, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil || target == 0 {
				return apperr.BadRequest("invalid user id")
			}
			if id.SubjectID != target && !id.Role.Has(model.CapManageUsers) {
				return apperr.Forbidden("you are not authorized to access this resource")
			}
			return next(c)
		}
	}
}
