package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hns_backend/internal/feature/prices/adapters"
	"hns_backend/internal/feature/prices/domain/entity"
)

func TestLoadConfig(t *testing.T) {
	t.Run("success: defaults to the local sqlite file", func(t *testing.T) {
		t.Setenv("DB_PATH", "")
		t.Setenv("DATABASE_URL", "")

		cfg := LoadConfig()

		assert.Equal(t, "./data/hns_price.db", cfg.SQLitePath)
		assert.Empty(t, cfg.PostgresURL)
	})

	t.Run("success: env overrides are honored", func(t *testing.T) {
		t.Setenv("DB_PATH", "/tmp/other.db")
		t.Setenv("DATABASE_URL", "postgres://localhost/prices")

		cfg := LoadConfig()

		assert.Equal(t, "/tmp/other.db", cfg.SQLitePath)
		assert.Equal(t, "postgres://localhost/prices", cfg.PostgresURL)
	})
}

func TestOpen(t *testing.T) {
	t.Run("success: creates the sqlite file and its directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "prices.db")

		db, err := Open(Config{SQLitePath: path})
		require.NoError(t, err)

		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)

		// The migrated schema must accept a price row straight away.
		repo := adapters.NewPriceRepository(db)
		err = repo.UpsertBatch(context.Background(), []entity.PricePoint{
			{Timestamp: 100, Currency: "usd", Price: 0.5},
		})
		assert.NoError(t, err)
	})

	t.Run("success: reopening the same file keeps existing rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prices.db")
		cfg := Config{SQLitePath: path}

		db, err := Open(cfg)
		require.NoError(t, err)
		repo := adapters.NewPriceRepository(db)
		require.NoError(t, repo.UpsertBatch(context.Background(), []entity.PricePoint{
			{Timestamp: 100, Currency: "usd", Price: 0.5},
		}))

		db2, err := Open(cfg)
		require.NoError(t, err)

		ts, err := adapters.NewPriceRepository(db2).LatestTimestamp(context.Background(), "usd")
		require.NoError(t, err)
		assert.Equal(t, int64(100), ts)
	})
}
