package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenithdocs/zenith-api/internal/apperr"
	"github.com/zenithdocs/zenith-api/internal/auth"
	"github.com/zenithdocs/zenith-api/internal/repository"
)

// identityKey is the Echo context key under which JWTAuth stores the decoded
// identity for downstream guards and handlers.
const identityKey = "identity"

// JWTAuth returns a middleware that validates a Bearer access token and
// injects the decoded identity into the request context. Failure modes map to
// distinct codes so clients know what to do: TOKEN_EXPIRED means call
// refresh, TOKEN_MISSING/TOKEN_INVALID mean re-authenticate. All three are
// 401.
//
// When users is non-nil the subject must still exist in the credential store;
// a deleted account is rejected even while its access token is
// cryptographically valid.
func JWTAuth(secret string, users repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return apperr.Unauthorized(apperr.CodeTokenMissing, "unauthorized access")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				return apperr.Unauthorized(apperr.CodeTokenMissing, "unauthorized access")
			}

			id, err := auth.ParseAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return apperr.Unauthorized(apperr.CodeTokenExpired, "access token expired")
				}
				return apperr.Unauthorized(apperr.CodeTokenInvalid, "invalid access token")
			}

			if users != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()
				if _, err := users.GetByID(ctx, id.SubjectID); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return apperr.Unauthorized(apperr.CodeTokenInvalid, "unauthorized access")
					}
					return apperr.Internal(err)
				}
			}

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// IdentityFrom retrieves the identity JWTAuth stored on the context.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}
