package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults mirror the original service configuration.
const (
	defaultPingInterval = 15 * time.Second
	defaultPongTimeout  = 45 * time.Second
	defaultTokenExpiry  = 30 * time.Minute
	minJWTSecretLength  = 32
)

type Config struct {
	AppEnv      string
	Port        string
	LogLevel    string
	LogFormat   string
	DatabaseURL string
	RedisURL    string

	JWTSecret   string
	TokenExpiry time.Duration

	// Heartbeat settings for the realtime subsystem. PongTimeout must
	// exceed PingInterval so a probe has a full interval to be answered.
	PingInterval time.Duration
	PongTimeout  time.Duration

	// ReminderScanInterval controls how often the due-reminder scheduler
	// wakes up on the leader instance.
	ReminderScanInterval time.Duration
}

func Load() (*Config, error) {
	// Best-effort .env loading for local development; the file is optional.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET_KEY", ""),
		TokenExpiry:          defaultTokenExpiry,
		PingInterval:         defaultPingInterval,
		PongTimeout:          defaultPongTimeout,
		ReminderScanInterval: 30 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least %d characters, got %d", minJWTSecretLength, len(cfg.JWTSecret))
	}

	if minutes, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES"); err != nil {
		return nil, err
	} else if minutes > 0 {
		cfg.TokenExpiry = time.Duration(minutes) * time.Minute
	}

	if seconds, err := getEnvInt("WS_PING_INTERVAL_SECONDS"); err != nil {
		return nil, err
	} else if seconds > 0 {
		cfg.PingInterval = time.Duration(seconds) * time.Second
	}

	if seconds, err := getEnvInt("WS_PONG_TIMEOUT_SECONDS"); err != nil {
		return nil, err
	} else if seconds > 0 {
		cfg.PongTimeout = time.Duration(seconds) * time.Second
	}

	if seconds, err := getEnvInt("REMINDER_SCAN_INTERVAL_SECONDS"); err != nil {
		return nil, err
	} else if seconds > 0 {
		cfg.ReminderScanInterval = time.Duration(seconds) * time.Second
	}

	if cfg.PongTimeout <= cfg.PingInterval {
		return nil, fmt.Errorf("WS_PONG_TIMEOUT_SECONDS (%v) must exceed WS_PING_INTERVAL_SECONDS (%v)", cfg.PongTimeout, cfg.PingInterval)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns 0 when the variable is unset or empty.
func getEnvInt(key string) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
