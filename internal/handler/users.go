package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zenithdocs/zenith-api/internal/apperr"
	"github.com/zenithdocs/zenith-api/internal/auth"
	"github.com/zenithdocs/zenith-api/internal/config"
	"github.com/zenithdocs/zenith-api/internal/model"
	"github.com/zenithdocs/zenith-api/internal/repository"
)

// UsersHandler serves the per-user resource endpoints. Route-level guards
// (admin-only on List, self-or-admin on the rest) run before these handlers,
// so they only deal with the resource itself.
type UsersHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewUsersHandler(cfg config.Config, users repository.UserStore) *UsersHandler {
	return &UsersHandler{Cfg: cfg, Users: users}
}

type updateUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Plan     string `json:"plan"`
}

// List handles GET /api/users (admin only).
func (h *UsersHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return apperr.Internal(err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: out})
}

// Get handles GET /api/users/:id (self or admin).
func (h *UsersHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, response{Success: true, Data: toUserPart(u)})
}

// Update handles PUT /api/users/:id (self or admin). Empty fields are left
// unchanged. Role is deliberately not updatable through this endpoint.
func (h *UsersHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !strings.Contains(email, "@") {
			return apperr.BadRequest("invalid email address")
		}
		u.Email = email
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return apperr.BadRequest("password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return apperr.Internal(err)
		}
		u.PasswordHash = hash
	}
	if req.Plan != "" {
		plan, err := model.ParsePlan(req.Plan)
		if err != nil {
			return apperr.BadRequest("invalid plan")
		}
		u.Plan = plan
	}

	if err := h.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.New(http.StatusBadRequest, apperr.CodeEmailTaken, "email already in use")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "User updated successfully",
		Data:    toUserPart(u),
	})
}

// Delete handles DELETE /api/users/:id (self or admin). The row carries the
// refresh fingerprint, so deletion also revokes the session.
func (h *UsersHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: "User deleted successfully"})
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("invalid user id")
	}
	return id, nil
}
