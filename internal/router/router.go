package router // package router defines how HTTP routes are registered for the API

import (
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/zenithdocs/zenith-api/internal/config"
	"github.com/zenithdocs/zenith-api/internal/handler"
	"github.com/zenithdocs/zenith-api/internal/middleware"
	"github.com/zenithdocs/zenith-api/internal/model"
	"github.com/zenithdocs/zenith-api/internal/repository"
)

// Register wires every route. The /api surface sits behind the shared API
// key; credential endpoints additionally sit behind the rate limiter, and the
// protected groups run bearer authentication with a live subject-existence
// check before any ownership guard. limiter may be a pass-through when Redis
// is unavailable.
func Register(e *echo.Echo, cfg config.Config, a *handler.AuthHandler, u *handler.UsersHandler, users repository.UserStore, limiter echo.MiddlewareFunc) {
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowCredentials: true,
	}))

	e.GET("/health", handler.Health)

	api := e.Group("/api", middleware.RequireAPIKey(cfg.APIKey))
	bearer := middleware.JWTAuth(cfg.AccessSecret, users)

	// Credential exchange: no session required.
	authGroup := api.Group("/auth")
	authGroup.POST("/register", a.Register, limiter)
	authGroup.POST("/login", a.Login, limiter)
	authGroup.POST("/refresh", a.Refresh, limiter)

	// Session-holding auth endpoints.
	authGroup.GET("/me", a.Me, bearer)
	authGroup.POST("/logout", a.Logout, bearer)

	// Per-user resources: admin may reach anyone, users only themselves.
	usersGroup := api.Group("/users", bearer)
	usersGroup.GET("", u.List, middleware.RequireCapability(model.CapManageUsers))
	usersGroup.GET("/:id", u.Get, middleware.SelfOrAdmin("id"))
	usersGroup.PUT("/:id", u.Update, middleware.SelfOrAdmin("id"))
	usersGroup.DELETE("/:id", u.Delete, middleware.SelfOrAdmin("id"))
}
