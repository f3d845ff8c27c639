package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/app"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/auth"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/config"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/coordination"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/database"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/logging"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/realtime"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/server"
)

const (
	schedulerLeaseKey = "leader:reminder_scheduler"
	schedulerLeaseTTL = 30 * time.Second

	// Inbound frame budget per websocket connection.
	wsInboundRate  = rate.Limit(10)
	wsInboundBurst = 20
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

// setupRedis returns nil when no REDIS_URL is configured; the reminder
// scheduler is disabled in that case.
func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, reminder scheduler disabled")
		return nil
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", "error", err)
		os.Exit(1)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, registry *realtime.Registry, stopScheduler context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopScheduler()
		registry.Drain("server shutting down")

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Realtime subsystem
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiry, clock)
	sessions := realtime.NewSessionHandler(registry, tokens, clock, realtime.SessionConfig{
		PingInterval: cfg.PingInterval,
		PongTimeout:  cfg.PongTimeout,
		InboundRate:  wsInboundRate,
		InboundBurst: wsInboundBurst,
	})

	// Repositories and services
	userRepo := database.NewUserRepo(pool)
	eventRepo := database.NewEventRepo(pool)
	inboxRepo := database.NewInboxRepo(pool)
	reminderRepo := database.NewReminderRepo(pool)

	eventService := app.NewEventService(eventRepo, dispatcher)
	services := server.Services{
		Users:     app.NewUserService(userRepo, tokens, clock),
		Events:    eventService,
		Inbox:     app.NewInboxService(inboxRepo, eventService, dispatcher),
		Reminders: app.NewReminderService(reminderRepo, eventRepo),
	}

	// Reminder scheduler runs on whichever instance holds the lease
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if redisClient != nil {
		election := coordination.NewLeaderElection(redisClient, uuid.NewString(), schedulerLeaseKey, schedulerLeaseTTL)
		scheduler := app.NewScheduler(reminderRepo, dispatcher, election, clock, cfg.ReminderScanInterval)
		go scheduler.Run(schedulerCtx)
	}

	// Pass nil explicitly to avoid typed-nil interface values
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, services, sessions, tokens, pool, redisClient)
	} else {
		srv = server.NewServer(cfg, services, sessions, tokens, pool, nil)
	}

	done := runGracefulShutdown(srv, registry, stopScheduler)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
