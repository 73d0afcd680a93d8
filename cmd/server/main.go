// Package main is the entry point for the medreg API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medreg/internal/domain/auth"
	"medreg/internal/domain/bed"
	"medreg/internal/domain/doctor"
	"medreg/internal/domain/patient"
	"medreg/internal/domain/polyclinic"
	"medreg/internal/domain/registration"
	"medreg/internal/domain/report"
	"medreg/internal/domain/ward"
	v1 "medreg/internal/infrastructure/http/v1"
	"medreg/internal/infrastructure/sequence"
	"medreg/internal/infrastructure/storage/postgres"
	"medreg/internal/infrastructure/storage/postgres/auth_repo"
	"medreg/internal/infrastructure/storage/postgres/registration_repo"
	"medreg/internal/infrastructure/storage/postgres/registry_repo"
	"medreg/internal/infrastructure/storage/postgres/report_repo"
	"medreg/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting medreg server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Sequence generator ---
	generator := sequence.New(txManager)

	// --- Repositories ---
	patientRepo := registry_repo.NewPatientRepo(txManager)
	polyclinicRepo := registry_repo.NewPolyclinicRepo(txManager)
	doctorRepo := registry_repo.NewDoctorRepo(txManager)
	wardRepo := registry_repo.NewWardRepo(txManager)
	bedRepo := registry_repo.NewBedRepo(txManager)
	registrationRepo := registration_repo.NewRegistrationRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Auth ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Domain services ---
	allocator := bed.NewAllocator(bedRepo, txManager)
	patientService := patient.NewService(patientRepo, generator, txManager)
	polyclinicService := polyclinic.NewService(polyclinicRepo, txManager)
	doctorService := doctor.NewService(doctorRepo, txManager)
	wardService := ward.NewService(wardRepo, bedRepo, allocator, txManager)
	registrationService := registration.NewService(
		registrationRepo,
		patientRepo,
		doctorRepo,
		polyclinicRepo,
		allocator,
		generator,
		txManager,
	)
	reportService := report.NewService(reportRepo, txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}
	registrationService.SetAuditor(auditService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:                pool,
		Logger:              log,
		AuditService:        auditService,
		JWTValidator:        jwtService,
		AuthService:         authService,
		PatientService:      patientService,
		PolyclinicService:   polyclinicService,
		DoctorService:       doctorService,
		WardService:         wardService,
		RegistrationService: registrationService,
		ReportService:       reportService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
