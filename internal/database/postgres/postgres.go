package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"account-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err = defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		_, err = defaultDB.Exec(createQuery)
		if err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		log.Printf("Database '%s' created successfully", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the account tables when they do not exist yet. The
// UNIQUE (user_id, role_id) constraint on user_roles is what makes the
// assignment upsert safe under concurrent requests.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            VARCHAR(16) PRIMARY KEY,
			username      VARCHAR(150) NOT NULL UNIQUE,
			email         VARCHAR(254) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			first_name    VARCHAR(150) NOT NULL DEFAULT '',
			last_name     VARCHAR(150) NOT NULL DEFAULT '',
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS profiles (
			user_id     VARCHAR(16) PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			phone       VARCHAR(20),
			profile_pic VARCHAR(512),
			bio         TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS roles (
			id          SERIAL PRIMARY KEY,
			name        VARCHAR(80) NOT NULL UNIQUE,
			slug        VARCHAR(100) NOT NULL UNIQUE,
			description TEXT,
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS user_roles (
			id          SERIAL PRIMARY KEY,
			user_id     VARCHAR(16) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id     INTEGER NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			assigned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			revoked_at  TIMESTAMPTZ,
			assigned_by VARCHAR(16) REFERENCES users(id) ON DELETE SET NULL,
			note        VARCHAR(255),
			UNIQUE (user_id, role_id)
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// ConnectWithRetry blocks until the database is reachable and the schema is
// in place, so callers never wire anything against a nil handle.
// maxAttempts <= 0 retries indefinitely.
func ConnectWithRetry(cfg config.PostgresConfig, wait time.Duration, maxAttempts int) (*sqlx.DB, error) {
	var lastErr error
	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		db, err := ConnectAndCreateDB(cfg)
		if err == nil {
			if schemaErr := EnsureSchema(db); schemaErr == nil {
				if attempt > 1 {
					log.Printf("database retry connection successfully")
				}
				return db, nil
			} else {
				db.Close()
				lastErr = schemaErr
			}
		} else {
			lastErr = err
		}

		if maxAttempts <= 0 || attempt < maxAttempts {
			log.Printf("database connect attempt %d failed: %s, next retry in %v", attempt, lastErr, wait)
			time.Sleep(wait)
		}
	}
	return nil, lastErr
}
