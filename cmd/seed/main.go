// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"dispensary/internal/core/id"
	"dispensary/internal/infrastructure/storage/postgres"
	"dispensary/pkg/logger"
)

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
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@dispensary.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
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
	now := time.Now()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO sys_users (
			id, email, password_hash, full_name, role, is_admin,
			deletion_mark, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, 'System Admin', 'admin', true, false, 1, $4, $4)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	type medicineSeed struct {
		code                 string
		name                 string
		genericName          string
		manufacturer         string
		schedule             string
		requiresPrescription bool
		unitPrice            string
	}

	medicines := []medicineSeed{
		{"MED-001", "Paracetamol 500mg", "Paracetamol", "Cipla", "OTC", false, "2.50"},
		{"MED-002", "Amoxicillin 250mg", "Amoxicillin", "Sun Pharma", "H", true, "8.00"},
		{"MED-003", "Azithromycin 500mg", "Azithromycin", "Zydus", "H1", true, "24.00"},
		{"MED-004", "Cetirizine 10mg", "Cetirizine", "Dr. Reddy's", "OTC", false, "1.75"},
		{"MED-005", "Alprazolam 0.5mg", "Alprazolam", "Torrent", "H1", true, "6.40"},
	}

	// Map code -> UUID so demo batches can reference the medicines
	medicineIDs := make(map[string]id.ID)

	for _, m := range medicines {
		mid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_medicines (
				id, code, name, generic_name, manufacturer, schedule,
				requires_prescription, unit_price, deletion_mark, version,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, 1, now(), now())
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, mid, m.code, m.name, m.genericName, m.manufacturer, m.schedule,
			m.requiresPrescription, m.unitPrice)
		if err != nil {
			return fmt.Errorf("insert medicine %s: %w", m.code, err)
		}

		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_medicines WHERE code = $1 AND deletion_mark = FALSE
			`, m.code).Scan(&mid)
			if err != nil {
				return fmt.Errorf("fetch existing medicine %s: %w", m.code, err)
			}
		}
		medicineIDs[m.code] = mid
	}

	log.Infow("medicines seeded", "count", len(medicines))

	type batchSeed struct {
		medicineCode string
		batchNumber  string
		quantity     int64
		expiryDays   int // days from today
	}

	batches := []batchSeed{
		{"MED-001", "PCM-2401", 500, 180},
		{"MED-001", "PCM-2402", 300, 365},
		{"MED-002", "AMX-2401", 120, 90},
		{"MED-002", "AMX-2402", 200, 270},
		{"MED-003", "AZT-2401", 80, 120},
		{"MED-004", "CTZ-2401", 1000, 540},
		{"MED-005", "ALP-2401", 60, 150},
	}

	today := time.Now().Truncate(24 * time.Hour)

	for _, b := range batches {
		mid, ok := medicineIDs[b.medicineCode]
		if !ok {
			continue
		}
		expiry := today.AddDate(0, 0, b.expiryDays)
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO inv_batches (
				id, medicine_id, batch_number, quantity, expiry_date,
				is_disposed, deletion_mark, version, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, false, false, 1, now(), now())
			ON CONFLICT (medicine_id, batch_number) DO NOTHING
		`, id.New(), mid, b.batchNumber, b.quantity, expiry)
		if err != nil {
			return fmt.Errorf("insert batch %s: %w", b.batchNumber, err)
		}
	}

	log.Infow("batches seeded", "count", len(batches))

	return nil
}
