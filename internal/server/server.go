package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/app"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/config"
	apperrors "github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/errors"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/realtime"
)

// redisHealthChecker is a minimal interface for Redis health checks
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Users     *app.UserService
	Events    *app.EventService
	Inbox     *app.InboxService
	Reminders *app.ReminderService
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	services  Services
	sessions  *realtime.SessionHandler
	verifier  realtime.CredentialVerifier
	db        postgresHealthChecker
	redis     redisHealthChecker
	startTime time.Time
}

func NewServer(cfg *config.Config, services Services, sessions *realtime.SessionHandler, verifier realtime.CredentialVerifier, db postgresHealthChecker, redisClient redisHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		services:  services,
		sessions:  sessions,
		verifier:  verifier,
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
