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
	"github.com/kingrain94/tenant-expense-api/internal/service"
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

	dbConfig := config.GetDatabaseConfig()
	poolConfig := config.GetConnectionPoolConfig()
	db, err := config.NewDatabase(dbConfig, poolConfig, cfg.AppEnv)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", err)
	}
	defer config.CloseDatabase(db)

	repo, err := postgres.NewPostgresRepository(db, cfg, poolConfig, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize repository", err)
	}
	tenantService := service.NewTenantService(repo, postgres.NewGooseMigrator(dbConfig, appLogger), appLogger)

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	provisionWorker := worker.NewSQSWorker(
		"provision",
		sqsService,
		sqsConfig.ProvisionQueueURL,
		worker.NewProvisionHandler(tenantService, appLogger),
		appLogger,
		cfg.WorkerCount,
		cfg.WorkerPollInterval,
	)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	provisionWorker.Start()

	// Wait for shutdown signal
	<-sigChan
	appLogger.Info("Shutting down provision worker...")

	provisionWorker.Stop()
	appLogger.Info("Provision worker stopped")
}
