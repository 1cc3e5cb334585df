package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when nothing is set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "mrp-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "mrp", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 15*time.Minute, cfg.Replenishment.ScanInterval)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("MRP_APP_NAME", "test-app")
		t.Setenv("MRP_APP_PORT", "9000")
		t.Setenv("MRP_DATABASE_HOST", "testdb.local")
		t.Setenv("MRP_DATABASE_PORT", "5433")
		t.Setenv("MRP_REPLENISHMENT_SCAN_INTERVAL", "5m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 5*time.Minute, cfg.Replenishment.ScanInterval)
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("MRP_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("MRP_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects sub-minute scan interval", func(t *testing.T) {
		t.Setenv("MRP_REPLENISHMENT_SCAN_INTERVAL", "10s")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		t.Setenv("MRP_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)

		t.Setenv("MRP_DATABASE_PASSWORD", "secret")
		_, err = Load()
		require.Error(t, err)

		t.Setenv("MRP_DATABASE_SSLMODE", "require")
		_, err = Load()
		assert.NoError(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "mrp",
		Password: "p@ss/word",
		DBName:   "inventory",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password are escaped
	assert.NotContains(t, dsn, "p@ss/word")
	assert.Contains(t, dsn, "p%40ss%2Fword")
}
