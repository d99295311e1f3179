package infra

import (
	"fmt"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the DDL
// GORM cannot express (composite unique indexes with NULL-aware semantics,
// partial indexes).
//
// TranslateError is on so a unique violation surfaces as gorm.ErrDuplicatedKey
// wherever the locked slot read races with a concurrent insert.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the model schema plus the SQL-only patches.
// Also used by the integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.User{},
		&model.Appointment{},
		&model.ScheduleConfig{},
		&model.DefaultSchedule{},
		&model.ERPNotification{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot fully handle on its own. Each statement uses IF NOT EXISTS / guarded
// DO-block semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Single occupancy of the dock: one appointment per (date, time),
		// system-wide. The service's locked read is the friendly fast path;
		// this index is the guarantee under concurrency.
		{"unique slot index on appointments", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_appointments_slot') THEN
    CREATE UNIQUE INDEX uni_appointments_slot ON appointments (date, time);
  END IF;
END $$`},
		// default_schedules: day_of_week NULL means "every day", and Postgres
		// unique indexes treat NULLs as distinct, so the all-days tier needs
		// its own partial unique index on time alone.
		{"unique all-days default per time", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_default_schedules_all_days') THEN
    CREATE UNIQUE INDEX uni_default_schedules_all_days ON default_schedules (time)
        WHERE day_of_week IS NULL;
  END IF;
END $$`},
		// Partial index backing the retry cron query.
		{"pending retry index on erp_notifications", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_erp_notifications_pending_retry') THEN
    CREATE INDEX idx_erp_notifications_pending_retry
        ON erp_notifications (next_retry_at)
        WHERE status = 'pending' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
