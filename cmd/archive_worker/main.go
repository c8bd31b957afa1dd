package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/internal/worker"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize logger
	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	poolConfig := config.GetConnectionPoolConfig()
	db, err := config.NewDatabase(config.GetDatabaseConfig(), poolConfig, cfg.AppEnv)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", err)
	}
	defer config.CloseDatabase(db)

	repo, err := postgres.NewPostgresRepository(db, cfg, poolConfig, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize repository", err)
	}

	ctx := context.Background()

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	// Initialize S3
	s3Config := config.DefaultS3Config()
	s3Client, err := s3Config.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to create S3 client", err)
	}

	archiveWorker := worker.NewSQSWorker(
		"archive",
		sqsService,
		sqsConfig.ExportQueueURL,
		worker.NewArchiveHandler(repo, s3Client, sqsService, s3Config, appLogger),
		appLogger,
		cfg.WorkerCount,
		cfg.WorkerPollInterval,
	)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	archiveWorker.Start()

	// Wait for shutdown signal
	<-sigChan
	appLogger.Info("Shutting down archive worker...")

	archiveWorker.Stop()
	appLogger.Info("Archive worker stopped")
}
