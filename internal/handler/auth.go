package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenithdocs/zenith-api/internal/apperr"
	"github.com/zenithdocs/zenith-api/internal/auth"
	"github.com/zenithdocs/zenith-api/internal/config"
	"github.com/zenithdocs/zenith-api/internal/middleware"
	"github.com/zenithdocs/zenith-api/internal/model"
	"github.com/zenithdocs/zenith-api/internal/queue"
	"github.com/zenithdocs/zenith-api/internal/repository"
)

// RefreshCookieName is the http-only cookie carrying the refresh token. The
// refresh token never appears in a JSON body; the cookie is scoped to the
// auth routes so it is not replayed against the rest of the API.
const RefreshCookieName = "refreshToken"

const refreshCookiePath = "/api/auth"

// dbTimeout bounds every credential-store call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  repository.UserStore
	Events *queue.Publisher
}

func NewAuthHandler(cfg config.Config, users repository.UserStore, events *queue.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Events: events}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID         uint64     `json:"id"`
	Email      string     `json:"email"`
	Role       model.Role `json:"role"`
	Plan       model.Plan `json:"plan"`
	TokensUsed uint64     `json:"tokensUsed"`
	TokenLimit uint64     `json:"tokenLimit"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// toUserPart strips credential material; the password hash and the refresh
// fingerprint must never serialize into any response.
func toUserPart(u model.User) userPart {
	return userPart{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		Plan:       u.Plan,
		TokensUsed: u.TokensUsed,
		TokenLimit: u.Plan.TokenLimit(),
		CreatedAt:  u.CreatedAt,
	}
}

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return apperr.BadRequest("email and password are required")
	}
	if !strings.Contains(email, "@") {
		return apperr.BadRequest("invalid email address")
	}
	if len(req.Password) < 6 {
		return apperr.BadRequest("password must be at least 6 characters")
	}
	role := model.RoleUser
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			return apperr.BadRequest("invalid role")
		}
		role = parsed
	}
	plan, err := model.ParsePlan(req.Plan)
	if err != nil {
		return apperr.BadRequest("invalid plan")
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u := model.User{Email: email, PasswordHash: hash, Role: role, Plan: plan}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.New(http.StatusBadRequest, apperr.CodeEmailTaken, "user already exists")
		}
		return apperr.Internal(err)
	}

	h.publish(c, queue.EventRegister, u.ID, u.Email)
	return c.JSON(http.StatusCreated, response{
		Success: true,
		Message: "User registered successfully",
		Data:    toUserPart(u),
	})
}

// Login handles POST /api/auth/login. On success the access token is returned
// in the body and a fresh refresh token is set as an http-only cookie; the
// stored fingerprint is overwritten, which revokes any refresh token from an
// earlier login (single active session per user).
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return apperr.BadRequest("email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.Unauthorized(apperr.CodeInvalidCredentials, "invalid credentials")
	}

	access, err := auth.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Role, h.Cfg.AccessTTLFor(u.Role))
	if err != nil {
		return apperr.Internal(err)
	}
	refresh, err := auth.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, h.Cfg.RefreshTTLFor(u.Role))
	if err != nil {
		return apperr.Internal(err)
	}

	if err := h.rotateFingerprint(ctx, &u, auth.Fingerprint(refresh.Token)); err != nil {
		return err
	}

	h.setRefreshCookie(c, refresh)
	h.publish(c, queue.EventLogin, u.ID, u.Email)
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "User logged in successfully",
		Data: echo.Map{
			"user":        toUserPart(u),
			"accessToken": access.Token,
		},
	})
}

// Refresh handles POST /api/auth/refresh. The presented token must carry a
// valid signature under the refresh secret, be unexpired, name an existing
// user and match the stored fingerprint byte for byte; only then is a new
// access token minted. The refresh token itself is not rotated here.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return apperr.Unauthorized(apperr.CodeTokenMissing, "no refresh token provided")
	}
	raw := strings.TrimSpace(cookie.Value)

	uid, err := auth.ParseRefreshToken(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return apperr.Unauthorized(apperr.CodeRefreshInvalid, "invalid or expired refresh token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized(apperr.CodeRefreshInvalid, "invalid or expired refresh token")
		}
		return apperr.Internal(err)
	}

	// A mismatch means this token was superseded by a later login or the
	// session was revoked; either way the presented token is dead.
	if !u.HasSession() || auth.Fingerprint(raw) != u.RefreshFingerprint {
		h.publish(c, queue.EventRefreshDenied, u.ID, u.Email)
		return apperr.Unauthorized(apperr.CodeRefreshMismatch, "refresh token mismatch")
	}

	access, err := auth.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Role, h.Cfg.AccessTTLFor(u.Role))
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "Access token refreshed successfully",
		Data:    echo.Map{"accessToken": access.Token},
	})
}

// Logout handles POST /api/auth/logout (protected). It clears the stored
// fingerprint, killing the refresh token everywhere, and deletes the cookie.
// The current access token stays valid until natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return apperr.Unauthorized(apperr.CodeTokenMissing, "unauthorized access")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized(apperr.CodeTokenInvalid, "unauthorized access")
		}
		return apperr.Internal(err)
	}

	if err := h.rotateFingerprint(ctx, &u, ""); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	h.publish(c, queue.EventLogout, u.ID, u.Email)
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/auth/me (protected).
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return apperr.Unauthorized(apperr.CodeTokenMissing, "unauthorized access")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: toUserPart(u)})
}

// rotateFingerprint writes a new fingerprint ("" revokes) with one re-read
// retry. Rotation is compare-and-swap on the user's token version, so a
// concurrent login racing this call surfaces as a conflict instead of
// silently invalidating the session it just created.
func (h *AuthHandler) rotateFingerprint(ctx context.Context, u *model.User, fingerprint string) error {
	for attempt := 0; ; attempt++ {
		err := h.Users.SetRefreshFingerprint(ctx, u.ID, fingerprint, u.TokenVersion)
		if err == nil {
			u.TokenVersion++
			u.RefreshFingerprint = fingerprint
			return nil
		}
		if errors.Is(err, repository.ErrVersionConflict) && attempt == 0 {
			fresh, gerr := h.Users.GetByID(ctx, u.ID)
			if gerr != nil {
				return apperr.Internal(gerr)
			}
			u.TokenVersion = fresh.TokenVersion
			continue
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperr.Conflict(apperr.CodeConflict, "session was updated concurrently, please retry")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, refresh auth.RefreshToken) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    refresh.Token,
		Path:     refreshCookiePath,
		Expires:  refresh.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

// publish emits an audit event without blocking the request; failures are the
// publisher's problem to log.
func (h *AuthHandler) publish(c echo.Context, typ queue.EventType, userID uint64, email string) {
	if h.Events == nil {
		return
	}
	ev := queue.AuthEvent{
		Type:   typ,
		UserID: userID,
		Email:  email,
		IP:     c.RealIP(),
		At:     time.Now().UTC(),
	}
	go func() { _ = h.Events.Publish(context.Background(), ev) }()
}
