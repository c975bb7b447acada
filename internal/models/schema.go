package models

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type migration struct {
	version    string
	statements []string
}

// Column types are written as {{tokens}} and expanded per driver.
var migrations = []migration{
	{"001_users", []string{`
CREATE TABLE IF NOT EXISTS users (
	id {{pk}},
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	phone VARCHAR(40) NOT NULL,
	address TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL
)`}},
	{"002_travel_packages", []string{`
CREATE TABLE IF NOT EXISTS travel_packages (
	id {{pk}},
	name VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	duration VARCHAR(50) NOT NULL,
	price {{money}} NOT NULL,
	original_price {{money}} NOT NULL,
	description TEXT NOT NULL,
	image_url VARCHAR(500) NOT NULL DEFAULT '',
	category VARCHAR(20) NOT NULL CHECK (category IN ('domestic', 'international')),
	rating {{rating}} NOT NULL DEFAULT 0,
	available BOOLEAN NOT NULL DEFAULT TRUE,
	discount_percentage INTEGER NOT NULL DEFAULT 0,
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL
)`}},
	{"003_package_inclusions", []string{`
CREATE TABLE IF NOT EXISTS package_inclusions (
	id {{pk}},
	package_id {{fk}} NOT NULL,
	inclusion VARCHAR(255) NOT NULL,
	FOREIGN KEY (package_id) REFERENCES travel_packages(id) ON DELETE CASCADE
)`,
		`CREATE INDEX idx_package_inclusions_package ON package_inclusions (package_id)`,
	}},
	{"004_bookings", []string{`
CREATE TABLE IF NOT EXISTS bookings (
	id {{pk}},
	user_id {{fk}} NOT NULL,
	booking_reference VARCHAR(64) NOT NULL UNIQUE,
	status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
	subtotal {{money}} NOT NULL,
	tax_amount {{money}} NOT NULL,
	shipping_cost {{money}} NOT NULL,
	discount_amount {{money}} NOT NULL,
	total_amount {{money}} NOT NULL,
	promo_code VARCHAR(32) NOT NULL DEFAULT '',
	processing_tier VARCHAR(20) NOT NULL DEFAULT 'standard',
	special_requests TEXT NOT NULL,
	booking_date {{ts}} NOT NULL,
	travel_date {{ts}} NULL,
	last_modified {{ts}} NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
)`,
		`CREATE INDEX idx_bookings_user ON bookings (user_id, booking_date)`,
	}},
	{"005_booking_items", []string{`
CREATE TABLE IF NOT EXISTS booking_items (
	id {{pk}},
	booking_id {{fk}} NOT NULL,
	package_id {{fk}} NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price {{money}} NOT NULL,
	total_price {{money}} NOT NULL,
	special_requests TEXT NOT NULL,
	FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
	FOREIGN KEY (package_id) REFERENCES travel_packages(id)
)`,
		`CREATE INDEX idx_booking_items_booking ON booking_items (booking_id)`,
	}},
}

func dialectReplacer(driver string) *strings.Replacer {
	switch driver {
	case "postgres":
		return strings.NewReplacer(
			"{{pk}}", "BIGSERIAL PRIMARY KEY",
			"{{fk}}", "BIGINT",
			"{{ts}}", "TIMESTAMP",
			"{{money}}", "NUMERIC(10,2)",
			"{{rating}}", "NUMERIC(2,1)",
		)
	case "sqlite":
		return strings.NewReplacer(
			"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{fk}}", "INTEGER",
			"{{ts}}", "DATETIME",
			"{{money}}", "NUMERIC",
			"{{rating}}", "REAL",
		)
	default:
		return strings.NewReplacer(
			"{{pk}}", "BIGINT AUTO_INCREMENT PRIMARY KEY",
			"{{fk}}", "BIGINT",
			"{{ts}}", "DATETIME",
			"{{money}}", "DECIMAL(10,2)",
			"{{rating}}", "DECIMAL(2,1)",
		)
	}
}

// Migrate applies every migration not yet recorded in schema_migrations, each
// in its own transaction where the driver supports transactional DDL.
func (r *SQLRepo) Migrate(ctx context.Context) (applied []string, err error) {
	driver := r.db.DriverName()
	repl := dialectReplacer(driver)

	if _, err := r.db.ExecContext(ctx, repl.Replace(`
CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(64) PRIMARY KEY,
	applied_at {{ts}} NOT NULL
)`)); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), m.version); err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return applied, err
		}
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, repl.Replace(stmt)); err != nil {
				_ = tx.Rollback()
				return applied, fmt.Errorf("failed to execute migration %s: %w", m.version, err)
			}
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`), m.version, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %s: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, err
		}
		applied = append(applied, m.version)
	}

	return applied, nil
}
