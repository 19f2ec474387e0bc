package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"toolkeeper/internal/caching"
	"toolkeeper/internal/config"
	"toolkeeper/internal/handlers"
	"toolkeeper/internal/jobs"
	"toolkeeper/internal/jobs/background"
	"toolkeeper/internal/middleware"
	"toolkeeper/internal/repositories"
	"toolkeeper/internal/services"
	"toolkeeper/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if err := database.Migrate(databaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}
	operatorPassword := os.Getenv("OPERATOR_PASSWORD")
	if operatorPassword == "" {
		operatorPassword = random.String(16)
		log.Printf("WARNING: Using generated operator password: %s", operatorPassword)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	jobsConfigPath := os.Getenv("JOBS_CONFIG")
	if jobsConfigPath == "" {
		jobsConfigPath = "jobs.toml"
	}
	jobsCfg, err := config.LoadJobsConfig(jobsConfigPath)
	if err != nil {
		log.Fatalf("Failed to load jobs config: %v", err)
	}

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Repositories
	toolRepo := repositories.NewToolRepo(pool)
	consumableRepo := repositories.NewConsumableRepo(pool)
	workerRepo := repositories.NewWorkerRepo(pool)
	lendingRepo := repositories.NewLendingRepo(pool)
	usageRepo := repositories.NewUsageRepo(pool)

	// Cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	inventorySvc := services.NewInventoryService(pool, toolRepo, consumableRepo, workerRepo, lendingRepo, usageRepo, cacheSvc)
	toolSvc := services.NewToolService(toolRepo, lendingRepo, cacheSvc)
	consumableSvc := services.NewConsumableService(consumableRepo, usageRepo, cacheSvc)
	workerSvc := services.NewWorkerService(workerRepo, lendingRepo, usageRepo, cacheSvc)
	backupSvc := services.NewBackupService(toolRepo, consumableRepo, workerRepo, minioSvc, jobsCfg.Snapshot.Bucket)

	// Background jobs
	alertSvc := jobs.NewStockAlertService(consumableRepo, usageRepo)
	scheduler, err := background.NewJobScheduler(alertSvc, backupSvc, jobsCfg.AlertInterval(), jobsCfg.SnapshotInterval())
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(jwtSecret, operatorPassword)
	toolHandlers := handlers.NewToolHandlers(toolSvc)
	consumableHandlers := handlers.NewConsumableHandlers(consumableSvc)
	workerHandlers := handlers.NewWorkerHandlers(workerSvc)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc)
	maintenanceHandlers := handlers.NewMaintenanceHandlers(backupSvc, cacheSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")
	v1.POST("/auth/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.NewJWTConfig(jwtSecret)))

	// Tool registry
	protected.GET("/tools", toolHandlers.ListTools)
	protected.POST("/tools", toolHandlers.CreateTool)
	protected.GET("/tools/:barcode", toolHandlers.GetTool)
	protected.PUT("/tools/:barcode", toolHandlers.UpdateTool)
	protected.DELETE("/tools/:barcode", toolHandlers.DeleteTool)
	protected.GET("/tools/:barcode/history", toolHandlers.GetLendingHistory)
	protected.POST("/tools/:barcode/defective", inventoryHandlers.MarkDefective)
	protected.POST("/tools/:barcode/available", inventoryHandlers.MarkAvailable)

	// Consumable registry
	protected.GET("/consumables", consumableHandlers.ListConsumables)
	protected.POST("/consumables", consumableHandlers.CreateConsumable)
	protected.GET("/consumables/low-stock", consumableHandlers.ListLowStock)
	protected.GET("/consumables/:barcode", consumableHandlers.GetConsumable)
	protected.PUT("/consumables/:barcode", consumableHandlers.UpdateConsumable)
	protected.DELETE("/consumables/:barcode", consumableHandlers.DeleteConsumable)
	protected.POST("/consumables/:barcode/restock", consumableHandlers.RestockConsumable)
	protected.GET("/consumables/:barcode/history", consumableHandlers.GetUsageHistory)

	// Worker registry
	protected.GET("/workers", workerHandlers.ListWorkers)
	protected.POST("/workers", workerHandlers.CreateWorker)
	protected.GET("/workers/:barcode", workerHandlers.GetWorker)
	protected.PUT("/workers/:barcode", workerHandlers.UpdateWorker)
	protected.DELETE("/workers/:barcode", workerHandlers.DeleteWorker)
	protected.GET("/workers/:barcode/lendings", workerHandlers.GetOpenLendings)

	// Lending and consumption
	protected.POST("/lendings", inventoryHandlers.LendTool)
	protected.POST("/returns", inventoryHandlers.ReturnTool)
	protected.POST("/withdrawals", inventoryHandlers.WithdrawConsumable)
	protected.POST("/barcodes/rename", inventoryHandlers.UpdateBarcode)

	// Maintenance
	protected.POST("/snapshots", maintenanceHandlers.CreateSnapshot)
	protected.GET("/snapshots", maintenanceHandlers.ListSnapshots)
	protected.GET("/snapshots/download-url", maintenanceHandlers.GetSnapshotURL)
	protected.DELETE("/snapshots", maintenanceHandlers.DeleteSnapshot)
	protected.POST("/cache/flush", maintenanceHandlers.FlushCache)

	// Trash
	protected.GET("/trash/tools", toolHandlers.ListTrashedTools)
	protected.POST("/trash/tools/:barcode/restore", toolHandlers.RestoreTool)
	protected.GET("/trash/consumables", consumableHandlers.ListTrashedConsumables)
	protected.POST("/trash/consumables/:barcode/restore", consumableHandlers.RestoreConsumable)
	protected.GET("/trash/workers", workerHandlers.ListTrashedWorkers)
	protected.POST("/trash/workers/:barcode/restore", workerHandlers.RestoreWorker)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Toolkeeper server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
