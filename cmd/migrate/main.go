package main

import (
	"os"

	"booking-order-be/internal/model"
	"booking-order-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true, database.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// 3. AutoMigrate the ledger tables
	models := model.LedgerModels()
	color.Cyan("Step 1: Running AutoMigrate for %d tables...", len(models))
	if err := database.Migrate(db, models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 4. Post-Migration: constraints GORM tags cannot express
	color.Cyan("Step 2: Creating guards and indexes...")

	postMigrationSQL := []string{
		// Status log is append-only
		`CREATE OR REPLACE FUNCTION forbid_status_log_change() RETURNS trigger LANGUAGE plpgsql AS $$
		BEGIN
		  RAISE EXCEPTION 'order_status_logs is append-only';
		END; $$;`,
		`DROP TRIGGER IF EXISTS order_status_logs_append_only ON order_status_logs;`,
		`CREATE TRIGGER order_status_logs_append_only BEFORE UPDATE OR DELETE ON order_status_logs
		 FOR EACH ROW EXECUTE FUNCTION forbid_status_log_change();`,

		// Refund money never goes negative
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_item_refund_fact_amount') THEN ALTER TABLE item_refund_facts ADD CONSTRAINT chk_item_refund_fact_amount CHECK (refund_amount >= 0 AND refund_fee >= 0); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_refund_apply_amount') THEN ALTER TABLE refund_applies ADD CONSTRAINT chk_refund_apply_amount CHECK (refund_amount >= 0); END IF; END $$;`,

		// Dispatcher claim scan
		`CREATE INDEX IF NOT EXISTS idx_outbox_due ON outbox_messages (available_at) WHERE status = 'PENDING';`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("✅ Success: Database migration completed successfully via GORM.")
}
