package main

import (
	"fmt"

	"bukukas/internal/config"
	"bukukas/internal/database"
	"bukukas/internal/logger"
	"bukukas/internal/middleware"
	"bukukas/internal/server"
	"bukukas/internal/services"
	"bukukas/internal/simpaskor"
	"bukukas/internal/storage"
	"bukukas/internal/validator"

	_ "bukukas/internal/docs" // Import swagger docs
)

// @title           Bukukas API
// @version         1.0
// @description     Bukukas keeps the books of a small organization: income and expense transactions in colored groups, employee payments, hayabusa payouts and monthly or yearly reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
	logger.Sync()
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	svc := server.Services{
		Users:            services.NewUserService(db, storage.NewLocalStore(cfg.UploadDir), cfg.MaxUploadBytes),
		Transactions:     services.NewTransactionService(db),
		Groups:           services.NewGroupService(db),
		EmployeePayments: services.NewEmployeePaymentService(db),
		HayabusaPayments: services.NewHayabusaPaymentService(db),
		Audit:            services.NewAuditService(db),
		Schedule:         simpaskor.NewClient(cfg.SimpaskorScheduleURL, cfg.SimpaskorTimeout),
	}
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTExpirationDur)

	router := server.NewRouter(svc, tokens, server.Options{
		UploadDir: cfg.UploadDir,
		Swagger:   cfg.Env != "production",
	})

	log.Infof("Starting Bukukas backend server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}
