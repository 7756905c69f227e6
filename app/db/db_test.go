package database

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDatabaseConfig(t *testing.T) {
	t.Run("builds connection URL from config", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Repositories.Postgres.Host = "localhost"
		cfg.Repositories.Postgres.Port = "5432"
		cfg.Repositories.Postgres.Username = "taskvault"
		cfg.Repositories.Postgres.Password = "secret"
		cfg.Repositories.Postgres.DB = "taskvault"
		cfg.Repositories.Postgres.SSLMODE = "disable"

		dbCfg, err := NewDatabaseConfig(cfg, testLogger())
		require.NoError(t, err)
		assert.Contains(t, dbCfg.ConnectionURL, "postgresql://")
		assert.Contains(t, dbCfg.ConnectionURL, "localhost:5432")
		assert.Contains(t, dbCfg.ConnectionURL, "sslmode=disable")
	})

	t.Run("nil config is rejected", func(t *testing.T) {
		dbCfg, err := NewDatabaseConfig(nil, testLogger())
		require.Error(t, err)
		assert.Nil(t, dbCfg)
		assert.Contains(t, err.Error(), "Postgres configuration is missing or invalid")
	})

	t.Run("missing host is rejected", func(t *testing.T) {
		cfg := &config.Config{}
		dbCfg, err := NewDatabaseConfig(cfg, testLogger())
		require.Error(t, err)
		assert.Nil(t, dbCfg)
	})
}

func TestRunMigrationsRejectsNonPostgresURL(t *testing.T) {
	err := RunMigrations("mysql://root@localhost:3306/app", testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database URL scheme")
}
