package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/authz"
	"github.com/magpress/magpress/internal/blob"
	"github.com/magpress/magpress/internal/config"
	"github.com/magpress/magpress/internal/db"
	"github.com/magpress/magpress/internal/handlers"
	"github.com/magpress/magpress/internal/logger"
	"github.com/magpress/magpress/internal/routes"
	"github.com/magpress/magpress/internal/session"
	"github.com/magpress/magpress/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, logFile, err := logger.Init(cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logFile.Close()

	gormDB, err := db.NewPostgres(cfg)
	if err != nil {
		zlog.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	zlog.Info("Successfully connected to PostgreSQL database")
	defer db.Close(gormDB)

	redisDB, err := db.NewRedisClient(cfg)
	if err != nil {
		zlog.Fatalf("Failed to initialize Redis: %v", err)
	}
	zlog.Info("Successfully connected to Redis")
	defer redisDB.Close()

	blobs, err := blob.NewDiskStorage(cfg.BlobDir, cfg.BlobURLPrefix)
	if err != nil {
		zlog.Fatalf("Failed to initialize blob storage: %v", err)
	}

	recorder := audit.NewRecorder(gormDB, zlog)
	st := store.New(gormDB, recorder, zlog)
	resolver := authz.NewResolver(gormDB, redisDB, zlog)
	decisions := authz.NewDecisionCache(authz.DecisionTTL)
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	h := handlers.New(st, recorder, resolver, decisions, sessions, blobs, zlog)

	app := fiber.New(fiber.Config{
		BodyLimit: blob.MaxSize + 1<<20,
	})
	app.Use(logger.FiberMiddleware(logFile))
	routes.Setup(app, h, sessions, resolver, decisions, cfg.BlobDir, zlog)

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	zlog.Infof("Server started on port %d", cfg.AppPort)
	log.Fatal(app.Listen(addr))
}
