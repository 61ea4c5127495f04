package routes

import (
	"time"

	"health-service-api/internal/adapters/http/handlers"
	"health-service-api/internal/adapters/http/middleware"
	"health-service-api/internal/adapters/persistence/repositories"
	"health-service-api/internal/config"
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/fieldcrypt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cipher *fieldcrypt.Cipher, sessions services.SessionStore, cfg *config.Config) {
	// Initialize repositories. The record repositories share one cipher and
	// own the field encryption boundary.
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	patientRepo := repositories.NewPatientRepository(db, cipher)
	prescriptionRepo := repositories.NewPrescriptionRepository(db, cipher)
	medicationRepo := repositories.NewMedicationRepository(db, cipher)
	appointmentRepo := repositories.NewAppointmentRepository(db, cipher)

	// Initialize services
	mfaService := services.NewMFAService(&cfg.MFA)
	notifyService := services.NewNotificationService(cfg)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, sessions, mfaService, notifyService, cfg)
	userService := services.NewUserService(userRepo)
	patientService := services.NewPatientService(patientRepo)
	prescriptionService := services.NewPrescriptionService(prescriptionRepo, patientRepo, userRepo)
	medicationService := services.NewMedicationService(medicationRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, patientRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	adminHandler := handlers.NewAdminHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	patientHandler := handlers.NewPatientHandler(patientService)
	prescriptionHandler := handlers.NewPrescriptionHandler(prescriptionService)
	medicationHandler := handlers.NewMedicationHandler(medicationService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited, never cached)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Admin verification link (opened from the notification email)
	apiV1.Get("/admin/verify/:userId/:token", middleware.StrictRateLimiter(), adminHandler.VerifyUser)

	// Pharmacist directory (doctors assigning prescriptions)
	pharmacistRoutes := apiV1.Group("/pharmacists")
	pharmacistRoutes.Use(middleware.AuthMiddleware(cfg))
	pharmacistRoutes.Use(middleware.DoctorOnly())
	pharmacistRoutes.Use(middleware.PrivateCacheHeaders(5 * time.Minute))
	pharmacistRoutes.Get("/", userHandler.ListPharmacists)
	pharmacistRoutes.Get("/:id", userHandler.GetPharmacist)

	// Patient routes (doctor writes, doctor+pharmacist reads)
	patientRoutes := apiV1.Group("/patients")
	patientRoutes.Use(middleware.AuthMiddleware(cfg))
	patientRoutes.Use(middleware.NoCacheHeaders())
	setupPatientRoutes(patientRoutes, patientHandler)

	// Prescription routes (doctor writes, assigned pharmacist reads and
	// moves status)
	prescriptionRoutes := apiV1.Group("/prescriptions")
	prescriptionRoutes.Use(middleware.AuthMiddleware(cfg))
	prescriptionRoutes.Use(middleware.NoCacheHeaders())
	setupPrescriptionRoutes(prescriptionRoutes, prescriptionHandler)

	// Medication routes (pharmacist only)
	medicationRoutes := apiV1.Group("/medications")
	medicationRoutes.Use(middleware.AuthMiddleware(cfg))
	medicationRoutes.Use(middleware.PharmacistOnly())
	setupMedicationRoutes(medicationRoutes, medicationHandler)

	// Appointment routes (doctor only)
	appointmentRoutes := apiV1.Group("/appointments")
	appointmentRoutes.Use(middleware.AuthMiddleware(cfg))
	appointmentRoutes.Use(middleware.DoctorOnly())
	setupAppointmentRoutes(appointmentRoutes, appointmentHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/login/mfa", middleware.AuthRateLimiter(), handler.LoginMFA)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Get("/mfa/qr", middleware.AuthMiddleware(cfg), handler.MFAQRCode)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupPatientRoutes configures patient routes. Reads are open to both
// roles, writes gated to doctors.
func setupPatientRoutes(router fiber.Router, handler *handlers.PatientHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	router.Post("/", middleware.DoctorOnly(), handler.Create)
	router.Put("/:id", middleware.DoctorOnly(), handler.Update)
	router.Delete("/:id", middleware.DoctorOnly(), handler.Delete)
}

// setupPrescriptionRoutes configures prescription routes
func setupPrescriptionRoutes(router fiber.Router, handler *handlers.PrescriptionHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Patch("/:id/status", handler.UpdateStatus)

	router.Post("/", middleware.DoctorOnly(), handler.Create)
	router.Put("/:id", middleware.DoctorOnly(), handler.Update)
	router.Delete("/:id", middleware.DoctorOnly(), handler.Delete)
}

// setupMedicationRoutes configures medication catalog routes
func setupMedicationRoutes(router fiber.Router, handler *handlers.MedicationHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Post("/", handler.Create)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

// setupAppointmentRoutes configures appointment routes
func setupAppointmentRoutes(router fiber.Router, handler *handlers.AppointmentHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Post("/", handler.Create)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}
