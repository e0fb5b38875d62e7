package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"MOLDSHOP_APP_NAME":                os.Getenv("MOLDSHOP_APP_NAME"),
		"MOLDSHOP_APP_ENV":                 os.Getenv("MOLDSHOP_APP_ENV"),
		"MOLDSHOP_APP_PORT":                os.Getenv("MOLDSHOP_APP_PORT"),
		"MOLDSHOP_DATABASE_HOST":           os.Getenv("MOLDSHOP_DATABASE_HOST"),
		"MOLDSHOP_DATABASE_PORT":           os.Getenv("MOLDSHOP_DATABASE_PORT"),
		"MOLDSHOP_DATABASE_USER":           os.Getenv("MOLDSHOP_DATABASE_USER"),
		"MOLDSHOP_DATABASE_PASSWORD":       os.Getenv("MOLDSHOP_DATABASE_PASSWORD"),
		"MOLDSHOP_DATABASE_DBNAME":         os.Getenv("MOLDSHOP_DATABASE_DBNAME"),
		"MOLDSHOP_DATABASE_SSLMODE":        os.Getenv("MOLDSHOP_DATABASE_SSLMODE"),
		"MOLDSHOP_DATABASE_MAX_OPEN_CONNS": os.Getenv("MOLDSHOP_DATABASE_MAX_OPEN_CONNS"),
		"MOLDSHOP_DATABASE_MAX_IDLE_CONNS": os.Getenv("MOLDSHOP_DATABASE_MAX_IDLE_CONNS"),
		"MOLDSHOP_REDIS_HOST":              os.Getenv("MOLDSHOP_REDIS_HOST"),
		"MOLDSHOP_LOG_LEVEL":               os.Getenv("MOLDSHOP_LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "moldshop-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "moldshop", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
		assert.False(t, cfg.HTTP.RateLimitEnabled)
		assert.Equal(t, 100, cfg.HTTP.RateLimitRequests)
		assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
		assert.Equal(t, "moldshop-backend", cfg.Telemetry.ServiceName)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("MOLDSHOP_APP_NAME", "moldshop-test")
		os.Setenv("MOLDSHOP_DATABASE_HOST", "db.internal")
		os.Setenv("MOLDSHOP_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "moldshop-test", cfg.App.Name)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("production requires database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("MOLDSHOP_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		clearEnv()
		os.Setenv("MOLDSHOP_APP_ENV", "production")
		os.Setenv("MOLDSHOP_DATABASE_PASSWORD", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "moldshop",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "moldshop")
	assert.Contains(t, dsn, "sslmode=disable")
	// special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisAddr(t *testing.T) {
	t.Run("empty host means not configured", func(t *testing.T) {
		cfg := RedisConfig{Port: 6379}
		assert.Empty(t, cfg.RedisAddr())
	})

	t.Run("host and port", func(t *testing.T) {
		cfg := RedisConfig{Host: "cache.internal", Port: 6380}
		assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
	})
}
