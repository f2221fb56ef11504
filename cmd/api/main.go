package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeraldtan21/cts/internal/auth"
	"github.com/jeraldtan21/cts/internal/catalog"
	"github.com/jeraldtan21/cts/internal/clock"
	"github.com/jeraldtan21/cts/internal/config"
	"github.com/jeraldtan21/cts/internal/database"
	"github.com/jeraldtan21/cts/internal/database/migrations"
	"github.com/jeraldtan21/cts/internal/handler"
	"github.com/jeraldtan21/cts/internal/middleware"
	"github.com/jeraldtan21/cts/internal/notification"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/router"
	"github.com/jeraldtan21/cts/internal/service"
	svcnotify "github.com/jeraldtan21/cts/internal/service/notification"
	"github.com/jeraldtan21/cts/internal/storage"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger := log.Default()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.MigrateUp(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}
	if status, err := migrations.CheckStatus(db); err != nil {
		logger.Printf("Could not read migration status: %v", err)
	} else if !status.UpToDate() {
		logger.Printf("WARNING: database schema is behind: %s", status)
	}

	hardware := catalog.Default()
	if cfg.Catalog.Path != "" {
		if hardware, err = catalog.Load(cfg.Catalog.Path); err != nil {
			log.Fatalf("Failed to load hardware catalog: %v", err)
		}
	}

	images, err := storage.NewImageStoreFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Webhook notifications are optional.
	var (
		client   notification.Notifier = notification.Disabled{}
		webhooks handler.HealthReporter
	)
	if cfg.NotificationService.Enabled() {
		client = notification.NewNotifier(notification.Config{
			URL:            cfg.NotificationService.URL,
			Timeout:        cfg.NotificationService.Timeout,
			RetryAttempts:  cfg.NotificationService.RetryAttempts,
			RetryDelay:     cfg.NotificationService.RetryDelay,
			MaxPayloadSize: cfg.NotificationService.MaxPayloadSize,
		}, logger)
		webhooks = client
	}
	notifier := svcnotify.NewServiceAdapter(client)

	// Repositories
	identityRepo := repository.NewIdentityRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	computerRepo := repository.NewComputerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// Services
	clk := clock.Real{}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, clk)

	authService := service.NewAuthService(identityRepo, employeeRepo, hasher, tokens, cfg.Auth.MinPasswordLength, logger)
	employeeService := service.NewEmployeeService(employeeRepo, identityRepo, departmentRepo, hasher, images, cfg.Auth.MinPasswordLength, logger)
	departmentService := service.NewDepartmentService(departmentRepo, employeeRepo, logger)
	computerService := service.NewComputerService(computerRepo, employeeRepo, hardware, images, notifier, logger)
	historyService := service.NewHistoryService(historyRepo, computerRepo, identityRepo, clk, notifier, logger)
	summaryService := service.NewSummaryService(summaryRepo)

	// Handlers
	maxUpload := cfg.Storage.MaxUploadBytes
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService, logger),
		Profile:     handler.NewProfileHandler(employeeService, computerService, maxUpload, logger),
		Employees:   handler.NewEmployeeHandler(employeeService, computerService, authService, maxUpload, logger),
		Departments: handler.NewDepartmentHandler(departmentService, logger),
		Computers:   handler.NewComputerHandler(computerService, historyService, maxUpload, logger),
		Dashboard:   handler.NewDashboardHandler(summaryService, hardware, logger),
		Health:      handler.NewHealthHandler(db, webhooks, version, logger),
	}
	if fs, ok := images.(*storage.FileSystemStore); ok {
		handlers.UploadsDir = fs.UploadsDir()
	}

	r := router.NewRouter(handlers, middleware.NewAuthMiddleware(authService, logger), cfg, logger)

	// Configure server with security settings
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Channel to listen for interrupt signal to gracefully shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting cts %s on port %d (storage=%s, notifications=%v)",
			version, cfg.Port, cfg.Storage.Type, cfg.NotificationService.Enabled())
		log.Printf("Security: Rate limit=%d RPS, Burst=%d, CORS=%v, Timeout=%v",
			cfg.Security.RateLimitRPS,
			cfg.Security.RateLimitBurst,
			cfg.Security.EnableCORS,
			cfg.Security.RequestTimeout,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-done
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	} else {
		log.Println("Server exited gracefully")
	}

	// Let in-flight notifications finish before the process exits.
	computerService.Wait()
	historyService.Wait()
}
