package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema contains the bootstrap DDL. Statements are idempotent so running
// them on every start is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(32)  NOT NULL DEFAULT 'ADMIN',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		admin_id   BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_admin (admin_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id                BIGINT UNSIGNED PRIMARY KEY,
		name              VARCHAR(255) NOT NULL,
		email             VARCHAR(255) NOT NULL DEFAULT '',
		phone             VARCHAR(32)  NOT NULL DEFAULT '',
		seat_number       INT UNSIGNED NULL,
		slot              VARCHAR(64)  NOT NULL,
		fee_status        VARCHAR(16)  NOT NULL,
		registration_date DATETIME     NOT NULL,
		id_proof_url      VARCHAR(512) NULL,
		KEY idx_users_seat_slot (seat_number, slot)
	)`,
	`CREATE TABLE IF NOT EXISTS user_logs (
		id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id  BIGINT UNSIGNED NOT NULL,
		action   VARCHAR(255) NOT NULL,
		admin_id BIGINT UNSIGNED NULL,
		at       DATETIME NOT NULL,
		KEY idx_user_logs_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		number  INT UNSIGNED PRIMARY KEY,
		status  VARCHAR(16) NOT NULL DEFAULT 'available',
		user_id BIGINT UNSIGNED NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id  TINYINT UNSIGNED PRIMARY KEY,
		doc JSON NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_records (
		id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id  BIGINT UNSIGNED NOT NULL,
		action   VARCHAR(255) NOT NULL,
		admin_id BIGINT UNSIGNED NULL,
		at       DATETIME NOT NULL
	)`,
}

// EnsureSchema creates the tables on first run and fills the fixed seat
// range 1..seatCount. Seat rows are never destroyed afterwards.
func EnsureSchema(ctx context.Context, db *sql.DB, seatCount int) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	const ins = `INSERT IGNORE INTO seats (number, status) VALUES (?, 'available')`
	for n := 1; n <= seatCount; n++ {
		if _, err := db.ExecContext(ctx, ins, n); err != nil {
			return fmt.Errorf("seed seat %d: %w", n, err)
		}
	}
	return nil
}
