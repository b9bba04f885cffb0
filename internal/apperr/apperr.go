// Package apperr contains the typed errors the whole service speaks. Every
// domain failure is tagged with an HTTP status and a stable machine code at
// the point of detection and travels unchanged to the single translation
// boundary in Handler, which renders the final JSON envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Stable machine codes. Clients key retry behavior off these: TOKEN_EXPIRED
// means call refresh, everything else under 401 means re-authenticate.
const (
	CodeValidation         = "VALIDATION"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeAPIKeyInvalid      = "API_KEY_INVALID"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeRefreshInvalid     = "REFRESH_INVALID"
	CodeRefreshMismatch    = "REFRESH_MISMATCH"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL"
)

// Error carries an HTTP status, a machine code and a human message. Err, when
// set, is the wrapped cause; it is logged but never serialized.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with an explicit status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

// Internal wraps an unexpected failure. The cause is kept for logs only.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error", Err: err}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Handler returns the Echo HTTPErrorHandler rendering every error the
// handlers and middleware produce. In dev mode the underlying cause of a 500
// is included in the message; in production it is logged and redacted.
func Handler(log *zap.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		status := http.StatusInternalServerError
		body := envelope{Message: "internal server error", Code: CodeInternal}

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status
			body.Message = appErr.Message
			body.Code = appErr.Code
			if appErr.Err != nil {
				log.Warn("request failed",
					zap.Int("status", status),
					zap.String("code", appErr.Code),
					zap.Error(appErr.Err))
			}
			if status >= http.StatusInternalServerError && dev && appErr.Err != nil {
				body.Message = appErr.Err.Error()
			}
		case errors.As(err, &httpErr):
			// Echo's own errors (404 route miss, 405, body too large).
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				body.Message = m
			}
			body.Code = ""
		default:
			log.Error("unhandled error", zap.Error(err))
			if dev {
				body.Message = err.Error()
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error("write error response", zap.Error(werr))
		}
	}
}
