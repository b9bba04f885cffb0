package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zenithdocs/zenith-api/internal/apperr"
	"github.com/zenithdocs/zenith-api/internal/config"
	"github.com/zenithdocs/zenith-api/internal/database"
	"github.com/zenithdocs/zenith-api/internal/handler"
	"github.com/zenithdocs/zenith-api/internal/middleware"
	"github.com/zenithdocs/zenith-api/internal/migrate"
	"github.com/zenithdocs/zenith-api/internal/queue"
	"github.com/zenithdocs/zenith-api/internal/repository"
	"github.com/zenithdocs/zenith-api/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrate.Up(ctx, db); err != nil {
		cancel()
		logger.Fatal("apply migrations", zap.Error(err))
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	events := queue.NewPublisher(logger)
	authHandler := handler.NewAuthHandler(cfg, users, events)
	usersHandler := handler.NewUsersHandler(cfg, users)

	go queue.StartAuditConsumer(logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.Handler(logger, !cfg.IsProd())
	e.Use(middleware.RequestLogger(logger))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.Register(e, cfg, authHandler, usersHandler, users, limiter)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger picks the zap profile matching the runtime environment.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProd() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
