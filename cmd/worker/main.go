// Package main runs the background enrichment worker (video duration fetch).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumenlearn/backend/config"
	"github.com/lumenlearn/backend/internal/enricher"
	"github.com/lumenlearn/backend/internal/lessons"
	"github.com/lumenlearn/backend/internal/media"
	"github.com/lumenlearn/backend/pkg/database"
	"github.com/lumenlearn/backend/pkg/queue"
	"github.com/lumenlearn/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Media.CloudName == "" {
		logger.Fatal("MEDIA_CLOUD_NAME is required for the enrichment worker")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	lessonRepo := lessons.NewRepository(pool)
	mediaClient := media.NewClient(cfg.Media, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := enricher.NewDurationProcessor(lessonRepo, mediaClient, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("enrichment worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
