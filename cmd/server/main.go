package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"kanau.app/kanaupoints/internal/config"
	"kanau.app/kanaupoints/internal/jobs"
	"kanau.app/kanaupoints/internal/model"
	"kanau.app/kanaupoints/internal/server"
	"kanau.app/kanaupoints/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	setupLogging(cfg.AppEnv)

	db, err := database.Connect(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(db, redisClient, cfg)

	scheduler := jobs.NewScheduler(srv.LedgerService, cfg.ReconcileSchedule)
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.PointSummary{},
		&model.PointTransaction{},
	)
}

// connectRedis returns nil when no REDIS_URL is configured; the ledger
// degrades to DB-only then.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Warn("REDIS_URL not set, running without advisory cache")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL, running without advisory cache")
		return nil
	}

	return redis.NewClient(opts)
}

func setupLogging(appEnv string) {
	if appEnv == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetLevel(log.DebugLevel)
}
