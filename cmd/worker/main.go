package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loggate/loggate/internal/config"
	"github.com/loggate/loggate/internal/pkg/logger"
	"github.com/loggate/loggate/internal/repository"
	"github.com/loggate/loggate/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	// 2. Storage
	db, err := repository.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}
	logger.Info("Connected to PostgreSQL")
	store := repository.NewPostgresLogStore(db)

	// 3. Queue Transport
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	queue := repository.NewRedisQueue(redisClient, cfg.Redis.QueueKey, cfg.Redis.ProcessingKey)

	// 4. Processing Pipeline
	delayPerChar := time.Duration(cfg.Worker.DelayMsPerChar) * time.Millisecond
	processor := service.NewLogProcessor(store, delayPerChar)
	batch := service.NewBatchProcessor(processor)
	consumer := service.NewConsumer(queue, batch,
		cfg.Worker.BatchSize, time.Duration(cfg.Worker.WaitSeconds)*time.Second)

	consumer.Start()
	logger.Info("Loggate worker started",
		"batch_size", cfg.Worker.BatchSize,
		"queue_key", cfg.Redis.QueueKey)

	// 5. Wait for Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")

	consumer.Stop()
	logger.Info("Worker exiting")
}
