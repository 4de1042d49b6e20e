package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/notify"
	"github.com/spec-kit/volunteer-hub/internal/observability"
	"github.com/spec-kit/volunteer-hub/internal/persistence"
	"github.com/spec-kit/volunteer-hub/internal/worker"
)

const workerCount = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pg, err := persistence.OpenStore(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	if !redis.Available() {
		logger.Fatal("redis is required by the email worker", zap.String("addr", cfg.Redis.Addr))
	}

	processor := worker.NewEmailProcessor(
		redis.EmailQueue(cfg.Notification.WorkerMaxRetries, logger),
		notify.NewLogMailer(logger),
		store.Repos().EmailLogs,
		cfg.Notification,
		logger,
	)

	logger.Info("email worker started", zap.Int("workers", workerCount))
	if err := processor.RunPool(ctx, workerCount); err != nil {
		logger.Error("email worker failed", zap.Error(err))
	}
	logger.Info("email worker stopped")
}
