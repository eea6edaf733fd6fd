package config

import (
	"testing"
	"time"

	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "ABTEST_WORKERS", "ABTEST_SEED", "ABTEST_MAX_INPUT", "READ_TIMEOUT", "DB_MIGRATE", "PPROF_ENABLED", "PPROF_PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Database.URL)
	assert.True(t, cfg.Database.Migrate)
	assert.GreaterOrEqual(t, cfg.Engine.Workers, 1)
	assert.Equal(t, uint64(0), cfg.Engine.Seed)
	assert.Equal(t, int64(1<<20), cfg.Share.MaxInputBytes)
	assert.False(t, cfg.Profiling.Enabled)
	assert.Equal(t, "6060", cfg.Profiling.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ABTEST_WORKERS", "3")
	t.Setenv("ABTEST_SEED", "42")
	t.Setenv("DATABASE_URL", "postgres://localhost/abtest?sslmode=disable")
	t.Setenv("DB_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Engine.Workers)
	assert.Equal(t, uint64(42), cfg.Engine.Seed)
	assert.Equal(t, "postgres://localhost/abtest?sslmode=disable", cfg.Database.URL)
	assert.False(t, cfg.Database.Migrate)
}

func TestLoadProfiling(t *testing.T) {
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Profiling.Enabled)
	assert.Equal(t, "7070", cfg.Profiling.Port)

	t.Setenv("PPROF_PORT", "8080")
	t.Setenv("PORT", "8080")
	_, err = Load()
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad seed", func(t *testing.T) {
		t.Setenv("ABTEST_SEED", "-1")
		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})

	t.Run("zero workers", func(t *testing.T) {
		t.Setenv("ABTEST_SEED", "")
		t.Setenv("ABTEST_WORKERS", "0")
		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
}
