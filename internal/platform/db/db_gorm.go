// Package db opens the gorm handle the whole process shares.
package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hns_backend/internal/feature/prices/adapters"
)

const defaultSQLitePath = "./data/hns_price.db"

// Config selects the storage backend. SQLitePath is the durable file
// used by default (and exposed for download); PostgresURL switches the
// process to Postgres when set.
type Config struct {
	SQLitePath  string
	PostgresURL string
}

// LoadConfig loads database configuration from environment variables.
func LoadConfig() Config {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = defaultSQLitePath
	}
	return Config{
		SQLitePath:  path,
		PostgresURL: os.Getenv("DATABASE_URL"),
	}
}

// Open connects to the configured backend and creates the prices table
// if it does not exist. The returned handle is a process-wide singleton
// with gorm's built-in pooling; callers never open per-operation
// connections.
func Open(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	if cfg.PostgresURL != "" {
		// Managed Postgres can lag behind the service at startup.
		deadline := time.Now().Add(60 * time.Second)
		for {
			db, err = gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{})
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("db connect failed after 60s: %w", err)
			}
			log.Printf("DB connect failed, retrying...: %v", err)
			time.Sleep(3 * time.Second)
		}
	} else {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
	}

	if err := db.AutoMigrate(&adapters.PricePointModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
