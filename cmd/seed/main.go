// Package main provides a CLI tool for applying the schema and seeding
// the database with initial data.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"medreg/internal/core/id"
	"medreg/internal/infrastructure/storage/postgres"
	"medreg/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1`,
		adminUsername,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "username", adminUsername, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, 'System Administrator', 'admin', true)
	`, userID, adminUsername, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "username", adminUsername, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Polyclinics
	clinics := []struct {
		code string
		name string
	}{
		{"UMUM", "Poliklinik Umum"},
		{"GIGI", "Poliklinik Gigi"},
		{"ANAK", "Poliklinik Anak"},
	}

	clinicIDs := make(map[string]id.ID)
	for _, cl := range clinics {
		clinicID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO polyclinics (id, code, name, is_active)
			VALUES ($1, $2, $3, true)
			ON CONFLICT (code) DO NOTHING
		`, clinicID, cl.code, cl.name)
		if err != nil {
			log.Warnw("failed to seed polyclinic", "code", cl.code, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM polyclinics WHERE code = $1`, cl.code,
			).Scan(&clinicID)
			if err != nil {
				log.Warnw("failed to fetch existing polyclinic", "code", cl.code, "error", err)
				continue
			}
		}
		clinicIDs[cl.code] = clinicID
	}

	// 2. Doctors
	doctors := []struct {
		license        string
		name           string
		specialization string
		clinicCode     string
	}{
		{"SIP-2024-001", "dr. Siti Rahayu", "General Practice", "UMUM"},
		{"SIP-2024-002", "drg. Bambang Wijaya", "Dentistry", "GIGI"},
		{"SIP-2024-003", "dr. Maya Kusuma, Sp.A", "Pediatrics", "ANAK"},
	}

	for _, d := range doctors {
		var clinicID any
		if cid, ok := clinicIDs[d.clinicCode]; ok {
			clinicID = cid
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO doctors (id, license_number, name, specialization, polyclinic_id, is_active)
			VALUES ($1, $2, $3, $4, $5, true)
			ON CONFLICT (license_number) DO NOTHING
		`, id.New(), d.license, d.name, d.specialization, clinicID)
		if err != nil {
			log.Warnw("failed to seed doctor", "license", d.license, "error", err)
		}
	}

	// 3. Wards with beds
	wards := []struct {
		code      string
		name      string
		class     string
		dailyRate string
		bedCount  int
	}{
		{"MELATI", "Melati", "III", "150000", 6},
		{"ANGGREK", "Anggrek", "II", "300000", 4},
		{"MAWAR", "Mawar", "VIP", "1000000", 2},
	}

	for _, w := range wards {
		wardID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO wards (id, code, name, class, daily_rate, is_active)
			VALUES ($1, $2, $3, $4, $5, true)
			ON CONFLICT (code) DO NOTHING
		`, wardID, w.code, w.name, w.class, w.dailyRate)
		if err != nil {
			log.Warnw("failed to seed ward", "code", w.code, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM wards WHERE code = $1`, w.code,
			).Scan(&wardID)
			if err != nil {
				log.Warnw("failed to fetch existing ward", "code", w.code, "error", err)
				continue
			}
		}

		for i := 1; i <= w.bedCount; i++ {
			number := fmt.Sprintf("%s-%02d", w.code[:1], i)
			_, err := pool.Pool.Exec(ctx, `
				INSERT INTO beds (id, ward_id, bed_number, status)
				VALUES ($1, $2, $3, 'available')
				ON CONFLICT (ward_id, bed_number) DO NOTHING
			`, id.New(), wardID, number)
			if err != nil {
				log.Warnw("failed to seed bed", "ward", w.code, "number", number, "error", err)
			}
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
