package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/docs"
	"github.com/kingrain94/tenant-expense-api/internal/api"
	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/middleware"
	"github.com/kingrain94/tenant-expense-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-expense-api/internal/service"
	"github.com/kingrain94/tenant-expense-api/internal/service/pubsub"
	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

// @title           Tenant Expense API
// @version         1.0
// @description     Schema-per-tenant expense service. The X-Tenant header selects the tenant schema.

// @host      localhost:10000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
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
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			appLogger.Error("Failed to close database", err)
		}
	}()

	repo, err := postgres.NewPostgresRepository(db, cfg, poolConfig, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize repository", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStartup()

	// Initialize Redis
	redisClient, err := config.DefaultRedisConfig().GetClient(startupCtx)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	redisPubSub := pubsub.NewRedisPubSub(redisClient, appLogger)

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(startupCtx)
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	// Initialize services
	tenantService := service.NewTenantService(repo, postgres.NewGooseMigrator(dbConfig, appLogger), appLogger)
	tenantService.SetQueue(sqsService)
	expenseService := service.NewExpenseService(repo, appLogger)
	expenseService.SetEventPublisher(redisPubSub)

	// Default tenants first, then bring every schema up to its baseline.
	if failures := tenantService.ProvisionDefaults(startupCtx, cfg.DefaultTenants); len(failures) > 0 {
		appLogger.Warnf("%d of %d default tenants could not be provisioned", len(failures), len(cfg.DefaultTenants))
	}
	report := service.NewReconciler(repo, tenantService, cfg.SeedFloor, cfg.SeedConcurrency, appLogger).Run(startupCtx)
	appLogger.Info("Startup reconciliation done",
		zap.Strings("schemas", report.Schemas),
		zap.Int("failures", len(report.Failures)))

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient, cfg, appLogger)
	validationMiddleware := middleware.NewValidationMiddleware(appLogger)
	tenantMiddleware := middleware.NewTenantMiddleware()

	if !authMiddleware.Enabled() {
		appLogger.Warn("JWT_SECRET_KEY not set, operator endpoints are unauthenticated")
	}

	// Initialize server
	server := api.NewServer(
		tenantService,
		expenseService,
		redisPubSub,
		authMiddleware,
		rateLimitMiddleware,
		validationMiddleware,
		tenantMiddleware,
		appLogger,
	)

	// Initialize router
	router := gin.Default()
	router.Use(middleware.CORS(cfg))

	// Swagger documentation endpoint
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.ServerPort)
	docs.SwaggerInfo.Schemes = []string{"http"}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", api.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup API routes
	server.SetupRoutes(router.Group(""))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", err)
		}
	}()
	appLogger.Info("Server listening", zap.Int("port", cfg.ServerPort))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	server.StopWebSocket()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	appLogger.Info("Server exiting")
	_ = appLogger.Sync()
}
