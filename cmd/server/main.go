package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"health-service-api/internal/adapters/http/middleware"
	"health-service-api/internal/adapters/http/routes"
	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/adapters/persistence/repositories"
	"health-service-api/internal/config"
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/fieldcrypt"

	"github.com/gofiber/fiber/v2"
)

// @title Health Service API
// @version 1.0
// @description Healthcare records API with admin-gated registration, TOTP MFA and field-level encryption of medical data
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@health-service.click

// @host api.health-service.click
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Field encryption cipher. Refuses to start without a valid key so the
	// API can never silently write plaintext medical data.
	cipher, err := fieldcrypt.New(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("❌ Failed to initialize field encryption: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// MFA handshake store (redis when configured, in-process otherwise)
	sessions := services.NewSessionStore(&cfg.Session)
	defer sessions.Close()

	// Nightly maintenance: purge expired refresh tokens and stale
	// unverified registrations
	cronService := services.NewCronService(
		repositories.NewRefreshTokenRepository(db),
		repositories.NewUserRepository(db),
	)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron jobs: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Health Service API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cipher, sessions, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
