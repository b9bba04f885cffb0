package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/zenithdocs/zenith-api/internal/apperr"
)

// APIKeyHeader carries the shared client key gating the /api surface. This
// check distinguishes known client applications from arbitrary internet
// traffic and runs before any per-user authentication.
const APIKeyHeader = "x-api-key"

// RequireAPIKey returns a middleware rejecting requests whose x-api-key
// header does not equal the configured key. The comparison is constant-time.
func RequireAPIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			given := c.Request().Header.Get(APIKeyHeader)
			if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				return apperr.Unauthorized(apperr.CodeAPIKeyInvalid, "unauthorized access")
			}
			return next(c)
		}
	}
}
