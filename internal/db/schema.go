package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
)

type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(driver))) {
	case MySQL:
		return MySQL, nil
	case SQLite:
		return SQLite, nil
	default:
		return "", fmt.Errorf("dialect %q tidak didukung", driver)
	}
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(20) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	is_admin TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	kind VARCHAR(10) NOT NULL,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(20) NOT NULL,
	reservation_date VARCHAR(10) NULL,
	reservation_time VARCHAR(5) NULL,
	check_in_date VARCHAR(10) NULL,
	check_out_date VARCHAR(10) NULL,
	room_type VARCHAR(50) NULL,
	guests INT NOT NULL,
	total_amount DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
	payment_ref VARCHAR(64) NULL,
	created_at DATETIME NOT NULL,
	KEY idx_bookings_user (user_id, kind),
	CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS payment_requests (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	checkout_request_id VARCHAR(100) NOT NULL,
	merchant_request_id VARCHAR(100) NOT NULL,
	amount DECIMAL(10,2) NOT NULL,
	phone_number VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL,
	mpesa_receipt VARCHAR(64) NULL,
	result_desc VARCHAR(255) NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_payment_checkout (checkout_request_id),
	KEY idx_payment_status_created (status, created_at),
	CONSTRAINT fk_payment_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	reservation_date TEXT,
	reservation_time TEXT,
	check_in_date TEXT,
	check_out_date TEXT,
	room_type TEXT,
	guests INTEGER NOT NULL,
	total_amount DECIMAL(10,2) NOT NULL,
	status TEXT NOT NULL DEFAULT 'unpaid',
	payment_ref TEXT,
	created_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id, kind)`,
	`CREATE TABLE IF NOT EXISTS payment_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	booking_id INTEGER NOT NULL REFERENCES bookings(id),
	checkout_request_id TEXT NOT NULL UNIQUE,
	merchant_request_id TEXT NOT NULL,
	amount DECIMAL(10,2) NOT NULL,
	phone_number TEXT NOT NULL,
	status TEXT NOT NULL,
	mpesa_receipt TEXT,
	result_desc TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_status_created ON payment_requests (status, created_at)`,
}

// Schema returns the DDL statements for a dialect, in dependency order.
func Schema(d Dialect) []string {
	if d == MySQL {
		return mysqlSchema
	}
	return sqliteSchema
}

// Migrate creates missing tables. Every statement is IF NOT EXISTS, so it is
// safe to run on each boot.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range Schema(d) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", d, err)
		}
	}
	log.Printf("[DB] skema %s siap (%d statement)", d, len(Schema(d)))
	return nil
}
