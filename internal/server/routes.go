package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth routes
	s.echo.POST("/auth/register", s.handleRegister)
	s.echo.POST("/auth/login", s.handleLogin)
	s.echo.POST("/auth/password-reset/request", s.handlePasswordResetRequest)
	s.echo.POST("/auth/password-reset/confirm", s.handlePasswordResetConfirm)

	// Profile
	s.echo.GET("/users/me", s.handleGetProfile, s.requireAuth)
	s.echo.PUT("/users/me", s.handleUpdateProfile, s.requireAuth)

	// Calendar events
	s.echo.POST("/api/events", s.handleCreateEvent, s.requireAuth)
	s.echo.GET("/api/events", s.handleListEvents, s.requireAuth)
	s.echo.GET("/api/events/:id", s.handleGetEvent, s.requireAuth)
	s.echo.PUT("/api/events/:id", s.handleUpdateEvent, s.requireAuth)
	s.echo.DELETE("/api/events/:id", s.handleDeleteEvent, s.requireAuth)

	// Inbox
	s.echo.POST("/api/inbox", s.handleCreateInboxItem, s.requireAuth)
	s.echo.GET("/api/inbox", s.handleListInboxItems, s.requireAuth)
	s.echo.GET("/api/inbox/:id", s.handleGetInboxItem, s.requireAuth)
	s.echo.PUT("/api/inbox/:id", s.handleUpdateInboxItem, s.requireAuth)
	s.echo.DELETE("/api/inbox/:id", s.handleDeleteInboxItem, s.requireAuth)
	s.echo.POST("/api/inbox/:id/convert", s.handleConvertInboxItem, s.requireAuth)

	// Reminders
	s.echo.POST("/api/reminders", s.handleCreateReminder, s.requireAuth)
	s.echo.GET("/api/reminders", s.handleListReminders, s.requireAuth)
	s.echo.GET("/api/reminders/:id", s.handleGetReminder, s.requireAuth)
	s.echo.PUT("/api/reminders/:id", s.handleUpdateReminder, s.requireAuth)
	s.echo.DELETE("/api/reminders/:id", s.handleDeleteReminder, s.requireAuth)

	// Realtime sync (token is carried in the query string, browsers
	// cannot set websocket headers)
	s.echo.GET("/ws", s.handleWebSocket)
}
