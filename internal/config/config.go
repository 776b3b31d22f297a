package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	RedisURL string

	LoginBonusPoints int
	ShareBonusPoints int

	BalanceCacheTTL time.Duration

	// Cron expression for the nightly reconciliation sweep, evaluated in UTC.
	ReconcileSchedule string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBUser:    getEnv("DB_USER", "postgres"),
		DBPass:    os.Getenv("DB_PASS"),
		DBName:    getEnv("DB_NAME", "kanau_points"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		RedisURL: os.Getenv("REDIS_URL"),

		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "15 0 * * *"),
	}

	var err error
	cfg.LoginBonusPoints, err = parseInt(getEnv("LOGIN_BONUS_POINTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_BONUS_POINTS: %w", err)
	}
	cfg.ShareBonusPoints, err = parseInt(getEnv("SHARE_BONUS_POINTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHARE_BONUS_POINTS: %w", err)
	}
	cfg.BalanceCacheTTL, err = time.ParseDuration(getEnv("BALANCE_CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BALANCE_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
