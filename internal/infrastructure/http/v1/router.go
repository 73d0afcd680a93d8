// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"medreg/internal/domain/auth"
	"medreg/internal/domain/doctor"
	"medreg/internal/domain/patient"
	"medreg/internal/domain/polyclinic"
	"medreg/internal/domain/registration"
	"medreg/internal/domain/report"
	"medreg/internal/domain/ward"
	"medreg/internal/infrastructure/http/v1/handlers"
	"medreg/internal/infrastructure/http/v1/middleware"
	"medreg/internal/infrastructure/storage/postgres"
	"medreg/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	// Pool is the database pool, used by health checks.
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// AuditService serves the registration audit trail.
	AuditService *postgres.AuditService

	AuthService         *auth.Service
	PatientService      *patient.Service
	PolyclinicService   *polyclinic.Service
	DoctorService       *doctor.Service
	WardService         *ward.Service
	RegistrationService *registration.Service
	ReportService       *report.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, base, cfg)

		// Everything below requires a valid token.
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerPatientRoutes(protected, base, cfg)
		registerCatalogRoutes(protected, base, cfg)
		registerRegistrationRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication and user administration endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

	public := rg.Group("/auth")
	{
		public.POST("/login", authHandler.Login)
		public.POST("/refresh", authHandler.Refresh)
	}

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
	}

	// User administration is admin-only.
	users := rg.Group("/users")
	users.Use(middleware.Auth(cfg.JWTValidator))
	users.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		users.POST("", authHandler.CreateUser)
		users.GET("", authHandler.ListUsers)
		users.PATCH("/:id/active", authHandler.SetUserActive)
	}
}

// registerPatientRoutes registers the patient registry endpoints.
func registerPatientRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	patientHandler := handlers.NewPatientHandler(base, cfg.PatientService)
	registrationHandler := handlers.NewRegistrationHandler(base, cfg.RegistrationService)

	patients := rg.Group("/patients")
	{
		patients.POST("", patientHandler.Create)
		patients.GET("", patientHandler.Search)
		patients.GET("/:id", patientHandler.Get)
		patients.PUT("/:id", patientHandler.Update)
		patients.GET("/mrn/:mrn", patientHandler.GetByMRN)
		patients.GET("/:id/registrations/active", registrationHandler.ActiveByPatient)
	}
}

// registerCatalogRoutes registers polyclinic, doctor, ward and bed endpoints.
// Reads are open to all authenticated users; mutations are admin-only.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	// --- POLYCLINICS ---
	{
		handler := handlers.NewPolyclinicHandler(base, cfg.PolyclinicService)
		clinics := rg.Group("/polyclinics")
		clinics.GET("", handler.List)
		clinics.GET("/:id", handler.Get)
		clinics.POST("", adminOnly, handler.Create)
		clinics.PUT("/:id", adminOnly, handler.Update)
	}

	// --- DOCTORS ---
	{
		handler := handlers.NewDoctorHandler(base, cfg.DoctorService)
		doctors := rg.Group("/doctors")
		doctors.GET("", handler.List)
		doctors.GET("/:id", handler.Get)
		doctors.POST("", adminOnly, handler.Create)
		doctors.PUT("/:id", adminOnly, handler.Update)
	}

	// --- WARDS AND BEDS ---
	{
		handler := handlers.NewWardHandler(base, cfg.WardService)
		wards := rg.Group("/wards")
		wards.GET("", handler.List)
		wards.GET("/:id", handler.Get)
		wards.GET("/:id/beds", handler.Beds)
		wards.POST("", adminOnly, handler.Create)
		wards.PUT("/:id", adminOnly, handler.Update)
		wards.POST("/:id/beds", adminOnly, handler.AddBed)

		beds := rg.Group("/beds")
		beds.GET("/available", handler.AvailableBeds)
		beds.PATCH("/:id/status", adminOnly, handler.SetBedStatus)
		beds.DELETE("/:id", adminOnly, handler.RemoveBed)
	}
}

// registerRegistrationRoutes registers the front-desk workflow endpoints.
func registerRegistrationRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewRegistrationHandler(base, cfg.RegistrationService)

	regs := rg.Group("/registrations")
	{
		regs.POST("/outpatient", handler.RegisterOutpatient)
		regs.POST("/inpatient", handler.RegisterInpatient)
		regs.GET("", handler.List)
		regs.GET("/:id", handler.Get)
		regs.GET("/number/:number", handler.GetByNumber)
		regs.POST("/:id/start", handler.Start)
		regs.POST("/:id/complete", handler.Complete)
		regs.POST("/:id/discharge", handler.Discharge)
		regs.POST("/:id/cancel", handler.Cancel)

		if cfg.AuditService != nil {
			auditHandler := handlers.NewAuditHandler(base, cfg.AuditService)
			regs.GET("/:id/history", middleware.RequireRole(auth.RoleAdmin), auditHandler.RegistrationHistory)
		}
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewReportHandler(base, cfg.ReportService)

	reports := rg.Group("/reports")
	{
		reports.GET("/daily", handler.Daily)
		reports.GET("/queues", handler.Queues)
		reports.GET("/occupancy", handler.Occupancy)
		reports.GET("/revenue", handler.Revenue)
		reports.GET("/dashboard", handler.Dashboard)
	}
}
