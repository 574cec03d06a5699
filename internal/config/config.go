package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded from the environment with an
// optional .env file.
type Config struct {
	AppPort int
	LogFile string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string

	SessionSecret string
	SessionTTL    time.Duration

	BlobDir       string
	BlobURLPrefix string
}

func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:          envInt("APP_PORT", 8080),
		LogFile:          envStr("LOG_FILE", "app.log"),
		PostgresHost:     envStr("POSTGRES_HOST", "localhost"),
		PostgresPort:     envInt("POSTGRES_PORT", 5432),
		PostgresUser:     envStr("POSTGRES_USER", "magpress"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       envStr("POSTGRES_DB", "magpress"),
		RedisAddr:        envStr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SessionTTL:       envDuration("SESSION_TTL", 12*time.Hour),
		BlobDir:          envStr("BLOB_DIR", "uploads"),
		BlobURLPrefix:    envStr("BLOB_URL_PREFIX", "/uploads"),
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
