package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// ConnectDB opens the pooled connection for env.DBDriver and verifies it with a ping.
// The caller owns the handle and must CloseDB it on shutdown.
func ConnectDB(env Env) (*sql.DB, error) {
	dsn := env.DBDSN
	if env.DBDriver == "mysql" {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(env.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("gagal open DB: %w", err)
	}

	switch env.DBDriver {
	case "sqlite":
		// single writer; keeps BEGIN/COMMIT from tripping SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("gagal ping DB: %w", err)
	}

	log.Printf("Berhasil konek ke database %s", env.DBDriver)
	return db, nil
}

// mysqlDSN forces parseTime and UTC so DATETIME columns scan into time.Time.
func mysqlDSN(raw string) (string, error) {
	cfg, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("DB_DSN mysql tidak valid: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// PingDB is used by the db-check endpoint.
func PingDB(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database belum terhubung")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

func CloseDB(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Printf("Gagal menutup DB: %v", err)
		return
	}
	log.Println("Koneksi database ditutup")
}
