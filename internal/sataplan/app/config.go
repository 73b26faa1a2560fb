package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// State backends for the consumption ledger and goal passwords.
const (
	StateBackendMemory = "memory"
	StateBackendSQLite = "sqlite"
	StateBackendRedis  = "redis"
)

type Config struct {
	SecretKey  string // Required: HMAC key for every token
	Algorithm  string // Optional: HS256, HS384 or HS512 (default: HS256)
	BaseURL    string // Optional: frontend URL encoded in QR codes (default: http://localhost:3000)
	CORSOrigin string // Optional: comma separated allowed origins

	DatabaseFile string // Optional: path to SQLite database file (default: ./sataplan.db)

	StateBackend    string        // Optional: memory, sqlite or redis (default: memory)
	StateCacheSize  int           // Optional: max live entries per in-memory state store (default: 10000)
	RedisAddr       string        // Optional: redis address (default: localhost:6379)
	RedisPassword   string        // Optional
	RedisDB         int           // Optional (default: 0)
	GoalPasswordTTL time.Duration // Optional: share password lifetime, 0 keeps until rotated (default: 720h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		SecretKey: getEnvOrDefault("SATAPLAN_SECRET_KEY", os.Getenv("AUTH_SECRET_KEY")),
		Algorithm: getEnvOrDefault("SATAPLAN_ALGORITHM", getEnvOrDefault("ALGORITHM", "HS256")),
		BaseURL:   getEnvOrDefault("QR_CODE_URL", "http://localhost:3000"),
		CORSOrigin: getEnvOrDefault(
			"CORS_ALLOW_ORIGINS",
			"http://localhost:3000",
		),
		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "sataplan.db"),
		StateBackend:         strings.ToLower(getEnvOrDefault("STATE_BACKEND", StateBackendMemory)),
		StateCacheSize:       getEnvIntOrDefault("STATE_CACHE_SIZE", 10000),
		RedisAddr:            getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvIntOrDefault("REDIS_DB", 0),
		GoalPasswordTTL:      getEnvDurationOrDefault("GOAL_PASSWORD_TTL", 30*24*time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate reports the first setting the application can't start with.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("config: SATAPLAN_SECRET_KEY is required")
	}
	switch strings.ToUpper(c.Algorithm) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported algorithm %q", c.Algorithm)
	}
	switch c.StateBackend {
	case StateBackendMemory, StateBackendSQLite, StateBackendRedis:
	default:
		return fmt.Errorf("config: unknown state backend %q", c.StateBackend)
	}
	if c.StateBackend == StateBackendMemory && c.StateCacheSize <= 0 {
		return errors.New("config: STATE_CACHE_SIZE must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.GoalPasswordTTL < 0 {
		return errors.New("config: GOAL_PASSWORD_TTL must not be negative")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
