package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"openResume/internal/api"
	"openResume/internal/auth"
	"openResume/internal/config"
	"openResume/internal/database"
	"openResume/internal/preview"
	"openResume/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := db.AutoMigrate(&database.Resume{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.String("name", cfg.Database.Name),
	)

	publicKeyPEM, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("read auth public key: %v", err)
	}
	verifier, err := auth.NewVerifier(publicKeyPEM)
	if err != nil {
		log.Fatalf("init token verifier: %v", err)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	previewConf := preview.DefaultConfig()
	previewConf.Debounce = cfg.Preview.Debounce()
	previewConf.ResizeDebounce = cfg.Preview.ResizeDebounce()
	previewConf.WidthThreshold = cfg.Preview.WidthThreshold
	previewConf.Padding = cfg.Preview.Padding
	previewConf.Width = cfg.Preview.DefaultWidth

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, db, asynqClient, verifier, redisClient, logger, storageClient, cfg.API.InternalSecret, previewConf)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
